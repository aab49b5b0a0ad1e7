package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"stayvista/shared/failure"
	"stayvista/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayRequest struct {
	RoomID   string `json:"room_id"   validate:"required,uuid"`
	Email    string `json:"email"     validate:"required,email"`
	CheckIn  string `json:"check_in"  validate:"required,calendardate"`
	CheckOut string `json:"check_out" validate:"required,calendardate"`
	Guests   int    `json:"guests"    validate:"gte=1,lte=16"`
	Role     string `json:"role"      validate:"omitempty,oneof=guest host admin"`
}

type normalizedRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *normalizedRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func validStay() stayRequest {
	return stayRequest{
		RoomID:   "0b6f8c3e-2d7a-4a61-9c55-6a1f0c2e9d10",
		Email:    "guest@example.com",
		CheckIn:  "2025-07-01",
		CheckOut: "2025-07-04T00:00:00Z",
		Guests:   2,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*stayRequest)
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(*stayRequest) {},
		},
		{
			name:    "missing room",
			mutate:  func(r *stayRequest) { r.RoomID = "" },
			wantMsg: "room_id is required",
		},
		{
			name:    "malformed room id",
			mutate:  func(r *stayRequest) { r.RoomID = "room-1" },
			wantMsg: "room_id must be a valid identifier",
		},
		{
			name:    "invalid email",
			mutate:  func(r *stayRequest) { r.Email = "guest" },
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "not a date",
			mutate:  func(r *stayRequest) { r.CheckIn = "01/07/2025" },
			wantMsg: "check_in must be a date (YYYY-MM-DD)",
		},
		{
			name:    "too many guests",
			mutate:  func(r *stayRequest) { r.Guests = 40 },
			wantMsg: "guests must be less than or equal to 16",
		},
		{
			name:    "unknown role",
			mutate:  func(r *stayRequest) { r.Role = "owner" },
			wantMsg: "role must be one of guest host admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validStay()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("decodes and normalizes", func(t *testing.T) {
		req := normalizedRequest{}

		err := validator.Validate(strings.NewReader(`{"email":"  Guest@Example.COM "}`), &req)

		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", req.Email)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := normalizedRequest{}

		err := validator.Validate(strings.NewReader(`{"email":`), &req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Contains(t, err.Error(), "failed to decode request body")
	})

	t.Run("empty body", func(t *testing.T) {
		req := normalizedRequest{}

		err := validator.Validate(strings.NewReader(""), &req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Equal(t, "request body is empty", err.Error())
	})

	t.Run("validation failure", func(t *testing.T) {
		req := normalizedRequest{}

		err := validator.Validate(strings.NewReader(`{}`), &req)

		require.Error(t, err)
		assert.Equal(t, "email is required", err.Error())
	})
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("2025-02-28", "calendardate"))
	assert.Error(t, validator.ValidateVar("2025-02-30", "calendardate"))
	assert.NoError(t, validator.ValidateVar("photo.jpg", "mimetypes=image/jpeg image/png"))
	assert.Error(t, validator.ValidateVar("notes.txt", "mimetypes=image/jpeg image/png"))
	assert.NoError(t, validator.ValidateVar("abc", "maxfilesize=1"))
	assert.Error(t, validator.ValidateVar(strings.Repeat("a", 2*1024*1024), "maxfilesize=1"))
}
