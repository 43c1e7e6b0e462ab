package http

import (
	"github.com/NeuralTrust/TrustGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getThreatReportHandler struct {
	logger  *logrus.Logger
	service SecurityService
}

func NewGetThreatReportHandler(logger *logrus.Logger, service SecurityService) Handler {
	return &getThreatReportHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Get threat report
// @Description Aggregates the event log and the blocked attempts counter
// @Tags Security
// @Produce json
// @Success 200 {object} response.ThreatReportOutput
// @Router /api/v1/security/report [get]
func (h *getThreatReportHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(response.ThreatReportOutput{
		ThreatReport: h.service.GetThreatReport(),
		State:        h.service.State(),
	})
}
