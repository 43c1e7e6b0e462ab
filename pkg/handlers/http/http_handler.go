package http

import (
	"context"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/gofiber/fiber/v2"
)

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

// SecurityService is the part of the security monitor the admin API exposes.
//
//go:generate mockery --name=SecurityService --dir=. --output=./mocks --filename=security_service_mock.go --case=underscore --with-expecter
type SecurityService interface {
	LogSecurityEvent(ctx context.Context, partial security.PartialEvent) error
	GetThreatReport() security.ThreatReport
	GetSecurityEvents() []security.Event
	ClearEvents(ctx context.Context)
	State() security.State
}

type HandlerTransport struct {
	GetVersionHandler Handler

	// Security
	GetThreatReportHandler     Handler
	ListSecurityEventsHandler  Handler
	LogSecurityEventHandler    Handler
	ClearSecurityEventsHandler Handler
}
