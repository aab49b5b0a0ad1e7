package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/infras/stripe"
	"stayvista/internal/domains/booking/pricing"
	"stayvista/internal/domains/payment/model"
	"stayvista/internal/domains/payment/model/dto"
	"stayvista/shared"
	"stayvista/shared/cache"
	"stayvista/shared/constant"
	"stayvista/shared/failure"

	"github.com/rs/zerolog/log"
)

var (
	errAmountTooSmall     = failure.BadRequestFromString("price must be at least one cent")
	errPaymentUnavailable = failure.BadGateway("payment processor unavailable")
)

type Payment interface {
	// CreateIntent opens a payment intent for price dollars and returns its client secret.
	// A non-empty idempotencyKey makes retries return the first intent's secret.
	CreateIntent(ctx context.Context, req dto.CreateIntentRequest, idempotencyKey string) (dto.CreateIntentResponse, error)
}

type serviceImpl struct {
	gateway stripe.Gateway
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(gateway stripe.Gateway, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Payment {
	return &serviceImpl{
		gateway: gateway,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) CreateIntent(ctx context.Context, req dto.CreateIntentRequest, idempotencyKey string) (res dto.CreateIntentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Price == nil {
		return res, failure.BadRequestFromString("price is required") // nolint:wrapcheck
	}

	// the processor is never called with an amount that failed validation
	cents, err := pricing.ToMinorUnits(*req.Price)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if cents < 1 {
		return res, errAmountTooSmall
	}

	actor := shared.ActorEmail(ctx)
	cacheKey := constant.Empty
	stripeKey := constant.Empty

	if idempotencyKey != constant.Empty {
		cacheKey = shared.BuildCacheKey(model.CacheKeyIntent, actor, idempotencyKey)
		stripeKey = actor + ":" + idempotencyKey

		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Info().Str("cacheKey", cacheKey).Msg("reusing payment intent for idempotency key")

			return res, nil
		}
	}

	intent, err := s.gateway.CreateIntent(ctx, cents, s.cfg.Stripe.Currency, stripeKey, map[string]string{
		model.MetadataGuestEmail: actor,
	})
	if err != nil {
		log.Error().Err(err).Int64("amount", cents).Msg("failed to create payment intent")

		return res, errPaymentUnavailable
	}

	res.ClientSecret = intent.ClientSecret

	if cacheKey != constant.Empty {
		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save payment intent to cache")
			}
		}()
	}

	return res, nil
}
