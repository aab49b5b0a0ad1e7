//go:build wireinject
// +build wireinject

package di

import (
	"stayvista/config"
	"stayvista/infras/jwt"
	"stayvista/infras/kafka"
	"stayvista/infras/mongo"
	"stayvista/infras/otel"
	"stayvista/infras/postgres"
	"stayvista/infras/redis"
	"stayvista/infras/s3"
	"stayvista/infras/stripe"
	"stayvista/permissions"
	"stayvista/shared/cache"
	"stayvista/transport/http"
	"stayvista/transport/http/middleware"
	"stayvista/transport/http/router"
	"stayvista/transport/scheduler"

	auditRepository "stayvista/internal/domains/audit/repository"
	auditService "stayvista/internal/domains/audit/service"
	authService "stayvista/internal/domains/auth/service"
	bookingEvent "stayvista/internal/domains/booking/event"
	bookingRepository "stayvista/internal/domains/booking/repository"
	bookingService "stayvista/internal/domains/booking/service"
	paymentService "stayvista/internal/domains/payment/service"
	roomRepository "stayvista/internal/domains/room/repository"
	roomService "stayvista/internal/domains/room/service"
	userRepository "stayvista/internal/domains/user/repository"
	userService "stayvista/internal/domains/user/service"

	auditHandler "stayvista/internal/handlers/audit"
	authHandler "stayvista/internal/handlers/auth"
	bookingHandler "stayvista/internal/handlers/booking"
	paymentHandler "stayvista/internal/handlers/payment"
	roomHandler "stayvista/internal/handlers/room"
	userHandler "stayvista/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	mongo.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	stripe.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var auditDomain = wire.NewSet(
	auditRepository.New,
	auditService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	roleResolver,
)

var authDomain = wire.NewSet(
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingEvent.New,
	bookingService.New,
)

var paymentDomain = wire.NewSet(
	paymentService.New,
)

var domains = wire.NewSet(
	auditDomain,
	userDomain,
	authDomain,
	roomDomain,
	bookingDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	auditHandler.New,
	router.New,
)

var workers = wire.NewSet(
	scheduler.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		workers,
		http.New,
	)

	return &http.HTTP{}
}
