package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/shared/constant"

	"github.com/rs/zerolog/log"
	stripeGo "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	otelAttrIntentID = "payment_intent.id"
	otelAttrAmount   = "payment_intent.amount"

	IntentStatusSucceeded = string(stripeGo.PaymentIntentStatusSucceeded)
	IntentStatusCanceled  = string(stripeGo.PaymentIntentStatusCanceled)
)

// Intent is the subset of a payment intent the booking workflow relies on.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

func (i Intent) Succeeded() bool {
	return i.Status == IntentStatusSucceeded
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (Intent, error)
	GetIntent(ctx context.Context, intentID string) (Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID, idempotencyKey string) error
}

type gatewayImpl struct {
	client *client.API
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Gateway {
	if cfg.Stripe.SecretKey == "" {
		log.Warn().Msg("Stripe secret key is empty, payment calls will be rejected")
	}

	return &gatewayImpl{
		client: client.New(cfg.Stripe.SecretKey, nil),
		otel:   otel,
	}
}

func (g *gatewayImpl) CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (res Intent, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".CreateIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrAmount, int(amount))

	params := &stripeGo.PaymentIntentParams{
		Amount:   stripeGo.Int64(amount),
		Currency: stripeGo.String(currency),
		AutomaticPaymentMethods: &stripeGo.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeGo.Bool(true),
		},
	}
	params.Context = ctx

	if idempotencyKey != constant.Empty {
		params.SetIdempotencyKey(idempotencyKey)
	}

	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	intent, err := g.client.PaymentIntents.New(params)
	if err != nil {
		logStripeError(err, "failed to create payment intent")

		return res, fmt.Errorf("failed to create payment intent: %w", err)
	}

	scope.SetAttribute(otelAttrIntentID, intent.ID)

	return fromStripe(intent), nil
}

func (g *gatewayImpl) GetIntent(ctx context.Context, intentID string) (res Intent, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".GetIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrIntentID, intentID)

	params := &stripeGo.PaymentIntentParams{}
	params.Context = ctx

	intent, err := g.client.PaymentIntents.Get(intentID, params)
	if err != nil {
		logStripeError(err, "failed to retrieve payment intent")

		return res, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	return fromStripe(intent), nil
}

func (g *gatewayImpl) CancelIntent(ctx context.Context, intentID string) (err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".CancelIntent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrIntentID, intentID)

	params := &stripeGo.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err = g.client.PaymentIntents.Cancel(intentID, params); err != nil {
		logStripeError(err, "failed to cancel payment intent")

		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}

	return nil
}

func (g *gatewayImpl) Refund(ctx context.Context, intentID, idempotencyKey string) (err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelAttrIntentID, intentID)

	params := &stripeGo.RefundParams{
		PaymentIntent: stripeGo.String(intentID),
	}
	params.Context = ctx

	if idempotencyKey != constant.Empty {
		params.SetIdempotencyKey(idempotencyKey)
	}

	if _, err = g.client.Refunds.New(params); err != nil {
		if alreadyRefunded(err) {
			log.Info().Str("intent_id", intentID).Msg("payment intent already refunded")

			return nil
		}

		logStripeError(err, "failed to refund payment intent")

		return fmt.Errorf("failed to refund payment intent: %w", err)
	}

	return nil
}

// alreadyRefunded reports a refund retry of a charge that was refunded before.
func alreadyRefunded(err error) bool {
	var stripeErr *stripeGo.Error

	return errors.As(err, &stripeErr) && stripeErr.Code == stripeGo.ErrorCodeChargeAlreadyRefunded
}

func fromStripe(intent *stripeGo.PaymentIntent) Intent {
	return Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}
}

func logStripeError(err error, msg string) {
	var stripeErr *stripeGo.Error
	if errors.As(err, &stripeErr) {
		log.Error().
			Err(err).
			Str("type", string(stripeErr.Type)).
			Str("code", string(stripeErr.Code)).
			Str("request_id", stripeErr.RequestID).
			Int("status", stripeErr.HTTPStatusCode).
			Msg(msg)

		return
	}

	log.Error().Err(err).Msg(msg)
}
