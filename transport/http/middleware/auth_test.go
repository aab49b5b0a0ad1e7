package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stayvista/config"
	"stayvista/infras/jwt"
	jwtMocks "stayvista/infras/jwt/mocks"
	"stayvista/infras/otel/mocks"
	authMocks "stayvista/internal/domains/auth/mocks"
	"stayvista/permissions"
	"stayvista/shared"
	"stayvista/shared/constant"
	"stayvista/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, setupMock func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockJWT := jwtMocks.NewMockJWT(ctrl)
	roles := authMocks.NewMockRoleResolver(ctrl)

	setupMock(mockJWT, roles)

	cfg := &config.Config{}
	cfg.JWT.Cookie.Name = "token"
	cfg.App.APIKey = "internal-key"

	m := middleware.NewAuthRoleMiddleware(mockJWT, roles, mocks.NewOtel(), permissions.Get(), cfg)

	whoami := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Actor", shared.ActorEmail(r.Context()))
		w.Header().Set("X-Role", shared.ActorRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	}

	r := chi.NewRouter()
	r.Group(func(group chi.Router) {
		group.Use(m.APIKey, m.Auth, m.RBAC)

		group.Get("/rooms", whoami)
		group.Get("/room/{id}", whoami)
		group.Delete("/room/{id}", whoami)
		group.Get("/my-bookings", whoami)
		group.Get("/users", whoami)
	})

	return r
}

func TestAuthRole_Auth(t *testing.T) {
	guestClaims := &jwt.Claims{Email: "guest@stayvista.com", Role: constant.RoleGuest, TokenID: "t-1"}

	tests := []struct {
		name      string
		method    string
		path      string
		cookie    string
		header    map[string]string
		setupMock func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver)
		wantCode  int
		wantActor string
		wantRole  string
	}{
		{
			name:      "protected route without cookie",
			method:    http.MethodGet,
			path:      "/my-bookings",
			setupMock: func(_ *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:   "protected route with invalid cookie",
			method: http.MethodGet,
			path:   "/my-bookings",
			cookie: "forged",
			setupMock: func(mockJWT *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("forged").Return(nil, jwt.ErrInvalidToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired cookie",
			method: http.MethodGet,
			path:   "/my-bookings",
			cookie: "stale",
			setupMock: func(mockJWT *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("stale").Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:      "public route without cookie",
			method:    http.MethodGet,
			path:      "/room/6f9c2a57-4f7e-4b55-9d1c-0c6e07c1a001",
			setupMock: func(_ *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {},
			wantCode:  http.StatusOK,
		},
		{
			name:   "valid cookie stores the caller",
			method: http.MethodGet,
			path:   "/my-bookings",
			cookie: "signed",
			setupMock: func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("signed").Return(guestClaims, nil)
				roles.EXPECT().Role(gomock.Any(), "guest@stayvista.com").Return(constant.RoleGuest, nil)
			},
			wantCode:  http.StatusOK,
			wantActor: "guest@stayvista.com",
			wantRole:  constant.RoleGuest,
		},
		{
			name:   "bearer header is accepted",
			method: http.MethodGet,
			path:   "/my-bookings",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer signed"},
			setupMock: func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("signed").Return(guestClaims, nil)
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.RoleGuest, nil)
			},
			wantCode:  http.StatusOK,
			wantActor: "guest@stayvista.com",
		},
		{
			name:   "guest cannot delete a room",
			method: http.MethodDelete,
			path:   "/room/6f9c2a57-4f7e-4b55-9d1c-0c6e07c1a001",
			cookie: "signed",
			setupMock: func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("signed").Return(guestClaims, nil)
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.RoleGuest, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "promotion applies without a new token",
			method: http.MethodDelete,
			path:   "/room/6f9c2a57-4f7e-4b55-9d1c-0c6e07c1a001",
			cookie: "signed",
			setupMock: func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("signed").Return(guestClaims, nil)
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.RoleHost, nil)
			},
			wantCode: http.StatusOK,
			wantRole: constant.RoleHost,
		},
		{
			name:   "role lookup failure falls back to the token claim",
			method: http.MethodGet,
			path:   "/users",
			cookie: "signed",
			setupMock: func(mockJWT *jwtMocks.MockJWT, roles *authMocks.MockRoleResolver) {
				mockJWT.EXPECT().ValidateToken("signed").
					Return(&jwt.Claims{Email: "admin@stayvista.com", Role: constant.RoleAdmin}, nil)
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.Empty, errors.New("redis down"))
			},
			wantCode: http.StatusOK,
			wantRole: constant.RoleAdmin,
		},
		{
			name:      "internal api key bypasses the cookie",
			method:    http.MethodGet,
			path:      "/users",
			header:    map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			setupMock: func(_ *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {},
			wantCode:  http.StatusOK,
			wantActor: constant.ContextSystem,
		},
		{
			name:      "wrong api key",
			method:    http.MethodGet,
			path:      "/users",
			header:    map[string]string{constant.RequestHeaderAPIKey: "guess"},
			setupMock: func(_ *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {},
			wantCode:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newRouter(t, tt.setupMock)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}

			for key, value := range tt.header {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantActor != "" {
				assert.Equal(t, tt.wantActor, rec.Header().Get("X-Actor"))
			}

			if tt.wantRole != "" {
				assert.Equal(t, tt.wantRole, rec.Header().Get("X-Role"))
			}
		})
	}
}

func TestAuthRole_UnauthorizedBody(t *testing.T) {
	handler := newRouter(t, func(_ *jwtMocks.MockJWT, _ *authMocks.MockRoleResolver) {})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/my-bookings", nil))

	var body struct {
		Error string `json:"error"`
	}

	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized access", body.Error)
}
