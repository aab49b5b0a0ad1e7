package dto

import (
	"strings"
	"time"

	"stayvista/infras/jwt"
)

type IssueTokenRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name"  validate:"omitempty,max=255"`
	Image string `json:"image" validate:"omitempty,max=1024"`
}

func (r *IssueTokenRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// TokenResponse describes an issued session. The token itself travels only in the cookie.
type TokenResponse struct {
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *TokenResponse) FromToken(token jwt.Token, email, role string) {
	r.Token = token.Value
	r.ExpiresAt = token.ExpiresAt
	r.Email = email
	r.Role = role
}
