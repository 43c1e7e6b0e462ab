package middleware

import (
	"context"
	"strings"

	"github.com/NeuralTrust/TrustGuard/pkg/common"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// EventRecorder receives authentication failures on the admin API.
type EventRecorder interface {
	LogSecurityEvent(ctx context.Context, partial security.PartialEvent) error
}

type adminAuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
	recorder   EventRecorder
}

func NewAdminAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
	recorder EventRecorder,
) Middleware {
	return &adminAuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
		recorder:   recorder,
	}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(authorizationHeader)
		if authHeader == "" {
			m.logger.Debug("no authorization header provided")
			return m.reject(ctx, "", "authorization required")
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			m.logger.Debug("invalid authorization header format")
			return m.reject(ctx, "", "invalid authorization format")
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			m.logger.Debug("empty token provided")
			return m.reject(ctx, "", "empty token provided")
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			m.logger.WithError(err).Debug("invalid token")
			subject, _ := jwt.SubjectFromToken(tokenString)
			return m.reject(ctx, subject, err.Error())
		}

		ctx.Locals(common.AdminSubjectKey, claims.Subject)
		return ctx.Next()
	}
}

func (m *adminAuthMiddleware) reject(ctx *fiber.Ctx, username, reason string) error {
	if m.recorder != nil {
		err := m.recorder.LogSecurityEvent(ctx.UserContext(), security.PartialEvent{
			Severity: security.Low,
			Details: security.AuthenticationFailureDetails{
				Username: username,
				Reason:   reason,
			},
		})
		if err != nil {
			m.logger.WithError(err).Warn("failed to record admin authentication failure")
		}
	}
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": reason})
}
