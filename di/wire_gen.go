// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"github.com/google/wire"
	"medsched/config"
	"medsched/infras/jwt"
	"medsched/infras/kafka"
	"medsched/infras/otel"
	"medsched/infras/postgres"
	"medsched/infras/redis"
	repository2 "medsched/internal/domains/appointment/repository"
	service2 "medsched/internal/domains/appointment/service"
	repository3 "medsched/internal/domains/notification/repository"
	service3 "medsched/internal/domains/notification/service"
	"medsched/internal/domains/request/repository"
	"medsched/internal/domains/request/service"
	"medsched/internal/handlers/appointment"
	"medsched/internal/handlers/notification"
	"medsched/internal/handlers/request"
	"medsched/permissions"
	"medsched/shared/cache"
	"medsched/transport/http"
	"medsched/transport/http/middleware"
	"medsched/transport/http/router"
)

// Injectors from wire.go:

func InitializeService() *http.HTTP {
	configConfig := config.Get()
	connection := postgres.New(configConfig)
	otelOtel := otel.New(configConfig)
	repositoryRequest := repository.New(connection, otelOtel)
	repositoryAppointment := repository2.New(connection, otelOtel)
	repositoryNotification := repository3.New(connection, otelOtel)
	client := redis.New(configConfig)
	redisCache := cache.NewRedisCache(client, otelOtel)
	kafkaClient := kafka.New(configConfig)
	serviceRequest := service.New(repositoryRequest, repositoryAppointment, repositoryNotification, connection, configConfig, redisCache, otelOtel, kafkaClient)
	handler := request.New(serviceRequest, otelOtel)
	serviceAppointment := service2.New(repositoryAppointment, configConfig, redisCache, otelOtel)
	appointmentHandler := appointment.New(serviceAppointment, otelOtel)
	serviceNotification := service3.New(repositoryNotification, otelOtel)
	notificationHandler := notification.New(serviceNotification, otelOtel)
	domainHandlers := router.DomainHandlers{
		Request:      handler,
		Appointment:  appointmentHandler,
		Notification: notificationHandler,
	}
	routerRouter := router.New(domainHandlers)
	appMiddleware := middleware.NewAppMiddleware(otelOtel, configConfig, redisCache)
	jwtJWT := jwt.New(configConfig)
	permissionData := permissions.Get()
	authRole := middleware.NewAuthRoleMiddleware(jwtJWT, otelOtel, permissionData, configConfig)
	httpHTTP := http.New(configConfig, routerRouter, appMiddleware, authRole)
	return httpHTTP
}

// wire.go:

var configurations = wire.NewSet(config.Get)

var infrastructures = wire.NewSet(postgres.New, wire.Bind(new(postgres.TxRunner), new(*postgres.Connection)), otel.New, redis.New, jwt.New, kafka.New)

var middlewares = wire.NewSet(permissions.Get, middleware.NewAppMiddleware, middleware.NewAuthRoleMiddleware)

var sharedHelpers = wire.NewSet(cache.NewRedisCache)

var requestDomain = wire.NewSet(repository.New, service.New)

var appointmentDomain = wire.NewSet(repository2.New, service2.New)

var notificationDomain = wire.NewSet(repository3.New, service3.New)

var domains = wire.NewSet(
	requestDomain,
	appointmentDomain,
	notificationDomain,
)

var routing = wire.NewSet(wire.Struct(new(router.DomainHandlers), "*"), request.New, appointment.New, notification.New, router.New)
