package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"

	"stayvista/infras/otel"
	"stayvista/internal/domains/audit/model"
	"stayvista/internal/domains/audit/model/dto"
	"stayvista/internal/domains/audit/repository"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/timezone"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Audit interface {
	// Record stores who did what to which resource. It never fails the caller.
	Record(ctx context.Context, action, resourceType, resourceID string, before, after any)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (dto.GetRecordsResponse, error)
}

type serviceImpl struct {
	repo repository.AuditLog
	otel otel.Otel
}

func New(repo repository.AuditLog, otel otel.Otel) Audit {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) Record(ctx context.Context, action, resourceType, resourceID string, before, after any) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Record")
	defer scope.End()

	actor := shared.ActorEmail(ctx)
	if actor == constant.Empty {
		actor = constant.ContextSystem
	}

	record := model.Record{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		ClientIP:     shared.ClientIP(ctx),
		Before:       snapshot(before),
		After:        snapshot(after),
		CreatedAt:    timezone.Now(),
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("action", action).Str("resource_id", resourceID).Msg("failed to record audit entry")
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (res dto.GetRecordsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		total   int
		records []model.Record
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		n, countErr := s.repo.Count(groupCtx, filter)
		if countErr != nil {
			log.Error().Err(countErr).Msg("failed to count audit records")

			return fmt.Errorf("failed to count audit records: %w", countErr)
		}

		total = n

		return nil
	})

	group.Go(func() error {
		found, findErr := s.repo.GetAll(groupCtx, params, filter)
		if findErr != nil {
			log.Error().Err(findErr).Msg("failed to get audit records")

			return fmt.Errorf("failed to get audit records: %w", findErr)
		}

		records = found

		return nil
	})

	if err = group.Wait(); err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModels(records, total, params.Limit)

	return res, nil
}

// snapshot flattens a value into its JSON document form.
func snapshot(value any) map[string]any {
	if value == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal audit snapshot")

		return nil
	}

	doc := map[string]any{}
	if err = json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{"value": string(raw)}
	}

	return doc
}
