package router

import (
	"medsched/internal/handlers/appointment"
	"medsched/internal/handlers/notification"
	"medsched/internal/handlers/request"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Request      request.Handler
	Appointment  appointment.Handler
	Notification notification.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Request.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
