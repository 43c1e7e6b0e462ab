package http

import (
	"github.com/NeuralTrust/TrustGuard/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type logSecurityEventHandler struct {
	logger  *logrus.Logger
	service SecurityService
}

func NewLogSecurityEventHandler(logger *logrus.Logger, service SecurityService) Handler {
	return &logSecurityEventHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Log a security event
// @Description Records an event reported by a collaborator such as the authentication module
// @Tags Security
// @Accept json
// @Produce json
// @Param event body request.LogSecurityEventRequest true "Event"
// @Success 202 {object} map[string]interface{} "Event accepted"
// @Failure 400 {object} map[string]interface{} "Invalid event"
// @Router /api/v1/security/events [post]
func (h *logSecurityEventHandler) Handle(c *fiber.Ctx) error {
	var req request.LogSecurityEventRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse security event body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	partial, err := req.ToPartialEvent()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.service.LogSecurityEvent(c.UserContext(), partial); err != nil {
		h.logger.WithError(err).Error("failed to log security event")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"type":     partial.Details.EventType(),
		"severity": partial.Severity.String(),
	})
}
