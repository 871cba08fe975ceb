//go:build wireinject
// +build wireinject

package di

import (
	"rms/config"
	"rms/infras/jwt"
	"rms/infras/kafka"
	"rms/infras/metrics"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/infras/redis"
	"rms/infras/s3"
	"rms/internal/domains/availability/snapshot"
	"rms/permissions"
	"rms/shared/cache"
	"rms/shared/policy"
	"rms/transport/http"
	"rms/transport/http/middleware"
	"rms/transport/http/router"

	availabilityService "rms/internal/domains/availability/service"
	reservationRepository "rms/internal/domains/reservation/repository"
	reservationService "rms/internal/domains/reservation/service"
	restaurantRepository "rms/internal/domains/restaurant/repository"
	restaurantService "rms/internal/domains/restaurant/service"
	tableRepository "rms/internal/domains/table/repository"
	waitlistRepository "rms/internal/domains/waitlist/repository"
	waitlistService "rms/internal/domains/waitlist/service"

	availabilityHandler "rms/internal/handlers/availability"
	eventsHandler "rms/internal/handlers/events"
	reservationHandler "rms/internal/handlers/reservation"
	waitlistHandler "rms/internal/handlers/waitlist"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
	policy.New,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var restaurantDomain = wire.NewSet(
	restaurantRepository.New,
	restaurantService.New,
)

var availabilityDomain = wire.NewSet(
	tableRepository.New,
	snapshot.New,
	availabilityService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var waitlistDomain = wire.NewSet(
	waitlistRepository.New,
	waitlistService.New,
)

var domains = wire.NewSet(
	restaurantDomain,
	availabilityDomain,
	reservationDomain,
	waitlistDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	availabilityHandler.New,
	reservationHandler.New,
	waitlistHandler.New,
	router.New,
)

func InitializeService() (*App, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		eventsHandler.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}, nil
}
