package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/TrustGuard/pkg/config"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	handlers "github.com/NeuralTrust/TrustGuard/pkg/handlers/http"
	"github.com/NeuralTrust/TrustGuard/pkg/handlers/http/mocks"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/logger"
	"github.com/NeuralTrust/TrustGuard/pkg/middleware"
	"github.com/NeuralTrust/TrustGuard/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "admin-secret"

func newTestAdminServer(t *testing.T, service *mocks.SecurityService) *AdminServer {
	t.Helper()
	log := logger.NewNopLogger()
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	handlerTransport := &handlers.HandlerTransport{
		GetVersionHandler:          handlers.NewGetVersionHandler(log),
		GetThreatReportHandler:     handlers.NewGetThreatReportHandler(log, service),
		ListSecurityEventsHandler:  handlers.NewListSecurityEventsHandler(log, service),
		LogSecurityEventHandler:    handlers.NewLogSecurityEventHandler(log, service),
		ClearSecurityEventsHandler: handlers.NewClearSecurityEventsHandler(log, service),
	}
	middlewareTransport := middleware.NewTransport(
		middleware.NewPanicRecoverMiddleware(log),
		middleware.NewAdminAuthMiddleware(log, jwt.NewJwtManager(testSecret), service),
	)

	s := NewAdminServer(AdminServerDI{
		Config:  cfg,
		Logger:  log,
		Routers: []router.ServerRouter{router.NewAdminRouter(middlewareTransport, handlerTransport)},
	})
	s.setup()
	return s
}

func TestAdminServer_HealthChecks(t *testing.T) {
	s := newTestAdminServer(t, new(mocks.SecurityService))

	for _, path := range []string{HealthPath, AdminHealthPath} {
		resp, err := s.Router.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestAdminServer_VersionIsPublic(t *testing.T) {
	s := newTestAdminServer(t, new(mocks.SecurityService))

	resp, err := s.Router.Test(httptest.NewRequest(fiber.MethodGet, "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminServer_SecurityRoutesRequireToken(t *testing.T) {
	service := new(mocks.SecurityService)
	service.On("LogSecurityEvent", mock.Anything, mock.MatchedBy(func(p security.PartialEvent) bool {
		_, ok := p.Details.(security.AuthenticationFailureDetails)
		return ok && p.Severity == security.Low
	})).Return(nil).Once()
	s := newTestAdminServer(t, service)

	resp, err := s.Router.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/security/report", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestAdminServer_ThreatReport(t *testing.T) {
	service := new(mocks.SecurityService)
	service.On("GetThreatReport").Return(security.ThreatReport{BlockedAttempts: 1})
	service.On("State").Return(security.StateMonitoring)
	s := newTestAdminServer(t, service)

	token, err := jwt.NewJwtManager(testSecret).CreateToken("ops", 0)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/security/report", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.Router.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.EqualValues(t, 1, out["blockedAttempts"])
	assert.Equal(t, "monitoring", out["state"])
}

func TestAdminRouter_NilTransport(t *testing.T) {
	r := router.NewAdminRouter(nil, nil)
	assert.ErrorIs(t, r.BuildRoutes(fiber.New()), router.ErrInvalidHandlerTransport)
}

func TestBaseServer_MetricsEndpoint(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	s := NewBaseServer(cfg, logger.NewNopLogger())

	resp, err := s.newMetricsApp().Test(httptest.NewRequest(fiber.MethodGet, MetricsPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
