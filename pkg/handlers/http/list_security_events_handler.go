package http

import (
	"strconv"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listSecurityEventsHandler struct {
	logger  *logrus.Logger
	service SecurityService
}

func NewListSecurityEventsHandler(logger *logrus.Logger, service SecurityService) Handler {
	return &listSecurityEventsHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary List security events
// @Description Lists recorded events oldest first, optionally filtered
// @Tags Security
// @Produce json
// @Param type query string false "Event type"
// @Param min_severity query string false "Lowest severity to include"
// @Param limit query int false "Return only the most recent N events"
// @Success 200 {object} response.ListSecurityEventsOutput
// @Failure 400 {object} map[string]interface{} "Invalid query"
// @Router /api/v1/security/events [get]
func (h *listSecurityEventsHandler) Handle(c *fiber.Ctx) error {
	var (
		eventType   = security.EventType(c.Query("type"))
		minSeverity security.Severity
		limit       int
		err         error
	)
	if eventType != "" && !eventType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event type"})
	}
	if raw := c.Query("min_severity"); raw != "" {
		minSeverity, err = security.ParseSeverity(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
	}

	events := h.service.GetSecurityEvents()
	filtered := make([]security.Event, 0, len(events))
	for _, evt := range events {
		if eventType != "" && evt.Type() != eventType {
			continue
		}
		if evt.Severity() < minSeverity {
			continue
		}
		filtered = append(filtered, evt)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	return c.Status(fiber.StatusOK).JSON(response.ListSecurityEventsOutput{
		Events: filtered,
		Total:  len(filtered),
	})
}
