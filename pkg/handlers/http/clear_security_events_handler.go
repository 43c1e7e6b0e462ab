package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type clearSecurityEventsHandler struct {
	logger  *logrus.Logger
	service SecurityService
}

func NewClearSecurityEventsHandler(logger *logrus.Logger, service SecurityService) Handler {
	return &clearSecurityEventsHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Clear security events
// @Description Empties the event log and its mirror; the blocked attempts counter is kept
// @Tags Security
// @Success 204 "No Content"
// @Router /api/v1/security/events [delete]
func (h *clearSecurityEventsHandler) Handle(c *fiber.Ctx) error {
	h.service.ClearEvents(c.UserContext())
	h.logger.Info("security event log cleared through admin api")
	return c.SendStatus(fiber.StatusNoContent)
}
