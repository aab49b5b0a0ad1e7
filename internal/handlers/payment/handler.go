package payment

import (
	"net/http"

	"stayvista/infras/otel"
	"stayvista/internal/domains/payment/model/dto"
	"stayvista/internal/domains/payment/service"
	"stayvista/shared/constant"
	"stayvista/shared/validator"
	"stayvista/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Post("/create-payment-intent", handler.CreatePaymentIntent)
}

// CreatePaymentIntent opens a payment intent and returns its client secret.
// @Summary Create a payment intent
// @Description Convert the price to cents and open a payment intent. Requests repeating an Idempotency-Key receive the first client secret.
// @Tags Payment
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body dto.CreateIntentRequest true "Create Intent Request"
// @Success 200 {object} dto.CreateIntentResponse "Client secret"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /create-payment-intent [post]
// @Security CookieAuth
func (handler *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePaymentIntent")
	defer scope.End()

	req := dto.CreateIntentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CreateIntent(ctx, req, r.Header.Get(constant.RequestHeaderIdempotencyKey))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create payment intent")

		response.WithError(w, err)

		return
	}

	// the client reads clientSecret from the top level of the body
	response.WithRaw(w, http.StatusOK, res)
}
