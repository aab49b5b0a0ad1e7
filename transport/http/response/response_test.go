package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stayvista/shared/failure"
	"stayvista/transport/http/response"

	"github.com/stretchr/testify/assert"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "failure keeps its message",
			err:      failure.Conflict("room is already booked for these dates"),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"room is already booked for these dates"}`,
		},
		{
			name:     "wrapped failure",
			err:      fmt.Errorf("reserve: %w", failure.BadGateway("card declined")),
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"card declined"}`,
		},
		{
			name:     "plain error is masked",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]int{"nights": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"nights":2}}`, rec.Body.String())
}

func TestWithRaw(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithRaw(rec, http.StatusOK, map[string]string{"clientSecret": "pi_secret"})

	assert.JSONEq(t, `{"clientSecret":"pi_secret"}`, rec.Body.String())
}

func TestWithMessageHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithRequestLimitExceeded(rec)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"REQUEST LIMIT EXCEEDED"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	response.WithPreparingShutdown(rec)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	response.WithUnhealthy(rec)
	assert.JSONEq(t, `{"message":"SERVER UNHEALTHY"}`, rec.Body.String())
}
