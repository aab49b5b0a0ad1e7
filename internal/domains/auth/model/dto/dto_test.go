package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"stayvista/infras/jwt"
	"stayvista/internal/domains/auth/model/dto"

	"github.com/stretchr/testify/assert"
)

func TestIssueTokenRequest_Normalize(t *testing.T) {
	req := dto.IssueTokenRequest{Email: "  Guest@StayVista.com "}
	req.Normalize()

	assert.Equal(t, "guest@stayvista.com", req.Email)
}

func TestTokenResponse_FromToken(t *testing.T) {
	expiresAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var res dto.TokenResponse
	res.FromToken(jwt.Token{Value: "signed", ExpiresAt: expiresAt}, "guest@stayvista.com", "host")

	assert.Equal(t, "signed", res.Token)
	assert.Equal(t, "host", res.Role)
	assert.Equal(t, expiresAt, res.ExpiresAt)

	raw, err := json.Marshal(res)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "signed")
}
