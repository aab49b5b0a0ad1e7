package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"stayvista/config"
	"stayvista/infras/jwt"
	"stayvista/infras/otel"
	"stayvista/internal/domains/auth/model/dto"
	"stayvista/shared/constant"

	"github.com/rs/zerolog/log"
)

// RoleResolver looks up the current role of a user.
type RoleResolver interface {
	Role(ctx context.Context, email string) (string, error)
}

type Auth interface {
	// IssueToken signs a session token for email carrying its stored role.
	IssueToken(ctx context.Context, req dto.IssueTokenRequest) (dto.TokenResponse, error)
}

type serviceImpl struct {
	roles      RoleResolver
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(roles RoleResolver, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		roles:      roles,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func (s *serviceImpl) IssueToken(ctx context.Context, req dto.IssueTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IssueToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()

	role, err := s.roles.Role(ctx, req.Email)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("failed to resolve user role")

		return res, fmt.Errorf("failed to resolve user role: %w", err)
	}

	token, err := s.jwtService.GenerateToken(req.Email, role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate token")

		return res, fmt.Errorf("failed to generate token: %w", err)
	}

	res.FromToken(token, req.Email, role)

	return res, nil
}
