package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"stayvista/config"
	"stayvista/infras/jwt"
	jwtMocks "stayvista/infras/jwt/mocks"
	"stayvista/infras/otel/mocks"
	authMocks "stayvista/internal/domains/auth/mocks"
	"stayvista/internal/domains/auth/model/dto"
	"stayvista/internal/domains/auth/service"
	"stayvista/shared/constant"
)

func TestAuthService_IssueToken(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       dto.IssueTokenRequest
		setupMock func(roles *authMocks.MockRoleResolver, mockJWT *jwtMocks.MockJWT)
		wantRole  string
		wantErr   bool
	}{
		{
			name: "host receives a token carrying their role",
			req:  dto.IssueTokenRequest{Email: "Host@StayVista.com", Name: "Host"},
			setupMock: func(roles *authMocks.MockRoleResolver, mockJWT *jwtMocks.MockJWT) {
				roles.EXPECT().Role(gomock.Any(), "host@stayvista.com").Return(constant.RoleHost, nil)
				mockJWT.EXPECT().GenerateToken("host@stayvista.com", constant.RoleHost).
					Return(jwt.Token{Value: "signed", ExpiresAt: expiresAt}, nil)
			},
			wantRole: constant.RoleHost,
		},
		{
			name: "first login is a guest",
			req:  dto.IssueTokenRequest{Email: "new@stayvista.com"},
			setupMock: func(roles *authMocks.MockRoleResolver, mockJWT *jwtMocks.MockJWT) {
				roles.EXPECT().Role(gomock.Any(), "new@stayvista.com").Return(constant.RoleGuest, nil)
				mockJWT.EXPECT().GenerateToken("new@stayvista.com", constant.RoleGuest).
					Return(jwt.Token{Value: "signed", ExpiresAt: expiresAt}, nil)
			},
			wantRole: constant.RoleGuest,
		},
		{
			name: "role lookup fails",
			req:  dto.IssueTokenRequest{Email: "guest@stayvista.com"},
			setupMock: func(roles *authMocks.MockRoleResolver, _ *jwtMocks.MockJWT) {
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.Empty, errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name: "signing fails",
			req:  dto.IssueTokenRequest{Email: "guest@stayvista.com"},
			setupMock: func(roles *authMocks.MockRoleResolver, mockJWT *jwtMocks.MockJWT) {
				roles.EXPECT().Role(gomock.Any(), gomock.Any()).Return(constant.RoleGuest, nil)
				mockJWT.EXPECT().GenerateToken(gomock.Any(), gomock.Any()).Return(jwt.Token{}, jwt.ErrInvalidClaim)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			roles := authMocks.NewMockRoleResolver(ctrl)
			mockJWT := jwtMocks.NewMockJWT(ctrl)
			tt.setupMock(roles, mockJWT)

			svc := service.New(roles, &config.Config{}, mocks.NewOtel(), mockJWT)

			res, err := svc.IssueToken(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "signed", res.Token)
			assert.Equal(t, tt.wantRole, res.Role)
			assert.Equal(t, expiresAt, res.ExpiresAt)
		})
	}
}
