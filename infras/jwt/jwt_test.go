package jwt_test

import (
	"testing"
	"time"

	"stayvista/config"
	"stayvista/infras/jwt"

	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func newConfig(expireMin int) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "stayvista-test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireMin = expireMin

	return cfg
}

func TestService_GenerateAndValidate(t *testing.T) {
	svc := jwt.New(newConfig(60))

	token, err := svc.GenerateToken("guest@example.com", "guest")
	assert.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(token.Value)
	assert.NoError(t, err)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.Equal(t, "guest", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, "stayvista-test", claims.Issuer)
}

func TestService_GenerateToken_EmptyEmail(t *testing.T) {
	svc := jwt.New(newConfig(60))

	_, err := svc.GenerateToken("", "guest")
	assert.ErrorIs(t, err, jwt.ErrInvalidClaim)
}

func TestService_ValidateToken(t *testing.T) {
	cfg := newConfig(60)
	svc := jwt.New(cfg)

	expired, err := jwtGo.NewWithClaims(jwtGo.SigningMethodHS256, jwt.Claims{
		Email: "guest@example.com",
		RegisteredClaims: jwtGo.RegisteredClaims{
			ExpiresAt: jwtGo.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte(cfg.JWT.Secret))
	assert.NoError(t, err)

	foreign, err := jwtGo.NewWithClaims(jwtGo.SigningMethodHS256, jwt.Claims{
		Email: "guest@example.com",
	}).SignedString([]byte("another-secret"))
	assert.NoError(t, err)

	noEmail, err := jwtGo.NewWithClaims(jwtGo.SigningMethodHS256, jwt.Claims{
		Role: "admin",
	}).SignedString([]byte(cfg.JWT.Secret))
	assert.NoError(t, err)

	unsigned, err := jwtGo.NewWithClaims(jwtGo.SigningMethodNone, jwt.Claims{
		Email: "guest@example.com",
	}).SignedString(jwtGo.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing token", token: "", wantErr: jwt.ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", wantErr: jwt.ErrInvalidToken},
		{name: "expired", token: expired, wantErr: jwt.ErrExpiredToken},
		{name: "wrong secret", token: foreign, wantErr: jwt.ErrInvalidToken},
		{name: "no email claim", token: noEmail, wantErr: jwt.ErrInvalidClaim},
		{name: "none algorithm", token: unsigned, wantErr: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty", header: "", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "scheme only", header: "Bearer ", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
