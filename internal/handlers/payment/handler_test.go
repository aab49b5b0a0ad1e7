package payment_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "stayvista/infras/otel/mocks"
	"stayvista/internal/domains/payment/mocks"
	"stayvista/internal/domains/payment/model/dto"
	"stayvista/internal/handlers/payment"
	"stayvista/shared/constant"
	"stayvista/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandler_CreatePaymentIntent(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		key       string
		setupMock func(svc *mocks.MockPayment)
		wantCode  int
		wantBody  string
	}{
		{
			name: "returns client secret at top level",
			body: `{"price": 300}`,
			key:  "checkout-1",
			setupMock: func(svc *mocks.MockPayment) {
				price := 300.0
				svc.EXPECT().
					CreateIntent(gomock.Any(), dto.CreateIntentRequest{Price: &price}, "checkout-1").
					Return(dto.CreateIntentResponse{ClientSecret: "pi_1_secret_abc"}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: `{"clientSecret":"pi_1_secret_abc"}`,
		},
		{
			name:      "negative price never reaches the service",
			body:      `{"price": -5}`,
			setupMock: func(*mocks.MockPayment) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  `{"error":"price must be greater than or equal to 0"}`,
		},
		{
			name:      "missing price",
			body:      `{}`,
			setupMock: func(*mocks.MockPayment) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  `{"error":"price is required"}`,
		},
		{
			name: "processor failure",
			body: `{"price": 10}`,
			setupMock: func(svc *mocks.MockPayment) {
				svc.EXPECT().
					CreateIntent(gomock.Any(), gomock.Any(), "").
					Return(dto.CreateIntentResponse{}, failure.BadGateway("payment processor unavailable"))
			},
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"payment processor unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockPayment(ctrl)
			tt.setupMock(svc)

			handler := payment.New(svc, otelMocks.NewOtel())
			router := chi.NewRouter()
			handler.Router(router)

			req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(tt.body))
			if tt.key != "" {
				req.Header.Set(constant.RequestHeaderIdempotencyKey, tt.key)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
