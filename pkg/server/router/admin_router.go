package router

import (
	"errors"

	handlers "github.com/NeuralTrust/TrustGuard/pkg/handlers/http"
	"github.com/NeuralTrust/TrustGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type adminRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAdminRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &adminRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport == nil {
		return ErrInvalidHandlerTransport
	}
	handlerTransport := r.handlerTransport

	router.Get("/version", handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		if r.middlewareTransport != nil {
			if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
				v1.Use(mws...)
			}
		}

		sec := v1.Group("/security")
		{
			sec.Get("/report", handlerTransport.GetThreatReportHandler.Handle)
			sec.Get("/events", handlerTransport.ListSecurityEventsHandler.Handle)
			sec.Post("/events", handlerTransport.LogSecurityEventHandler.Handle)
			sec.Delete("/events", handlerTransport.ClearSecurityEventsHandler.Handle)
		}
	}
	return nil
}
