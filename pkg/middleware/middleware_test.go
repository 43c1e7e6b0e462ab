package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/logger"
	"github.com/NeuralTrust/TrustGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []security.PartialEvent
}

func (r *recorder) LogSecurityEvent(_ context.Context, partial security.PartialEvent) error {
	r.events = append(r.events, partial)
	return nil
}

func TestAdminAuthMiddleware(t *testing.T) {
	manager := jwt.NewJwtManager("admin-secret")
	valid, err := manager.CreateToken("operator", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		status   int
		recorded bool
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, false},
		{"missing header", "", http.StatusUnauthorized, true},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, true},
		{"bad token", "Bearer nope", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			app := fiber.New()
			app.Use(middleware.NewAdminAuthMiddleware(logger.NewNopLogger(), manager, rec).Middleware())
			app.Get("/api/v1/security/report", func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/security/report", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if !tt.recorded {
				assert.Empty(t, rec.events)
				return
			}
			require.Len(t, rec.events, 1)
			assert.Equal(t, security.AuthenticationFailure, rec.events[0].Details.EventType())
		})
	}
}

func TestPanicRecoverMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logger.NewNopLogger()).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
