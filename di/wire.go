//go:build wireinject
// +build wireinject

package di

import (
	"medsched/config"
	"medsched/infras/jwt"
	"medsched/infras/kafka"
	"medsched/infras/otel"
	"medsched/infras/postgres"
	"medsched/infras/redis"
	"medsched/permissions"
	"medsched/shared/cache"
	"medsched/transport/http"
	"medsched/transport/http/middleware"
	"medsched/transport/http/router"

	appointmentRepository "medsched/internal/domains/appointment/repository"
	appointmentService "medsched/internal/domains/appointment/service"
	notificationRepository "medsched/internal/domains/notification/repository"
	notificationService "medsched/internal/domains/notification/service"
	requestRepository "medsched/internal/domains/request/repository"
	requestService "medsched/internal/domains/request/service"

	appointmentHandler "medsched/internal/handlers/appointment"
	notificationHandler "medsched/internal/handlers/notification"
	requestHandler "medsched/internal/handlers/request"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.TxRunner), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	permissions.Get,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var requestDomain = wire.NewSet(
	requestRepository.New,
	requestService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var domains = wire.NewSet(
	requestDomain,
	appointmentDomain,
	notificationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	requestHandler.New,
	appointmentHandler.New,
	notificationHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
