package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/internal/domains/audit/model"
	"stayvista/internal/domains/audit/model/dto"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditLog interface {
	Insert(ctx context.Context, record model.Record) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) ([]model.Record, error)
	Count(ctx context.Context, filter dto.Filter) (int, error)
}

type repositoryImpl struct {
	collection *mongoDriver.Collection
	otel       otel.Otel
}

func New(db *mongoDriver.Database, cfg *config.Config, otel otel.Otel) AuditLog {
	return &repositoryImpl{
		collection: db.Collection(cfg.DB.Mongo.AuditCollection),
		otel:       otel,
	}
}

func (r *repositoryImpl) Insert(ctx context.Context, record model.Record) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelMongoScopeName, constant.OtelMongoScopeName+".audit.Insert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = r.collection.InsertOne(ctx, record); err != nil {
		log.Error().Err(err).Str("action", record.Action).Msg("failed to insert audit record")

		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (res []model.Record, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelMongoScopeName, constant.OtelMongoScopeName+".audit.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	opts := options.Find().SetSort(bson.D{{Key: model.FieldCreatedAt, Value: -1}})
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit)).SetSkip(int64(params.Offset()))
	}

	cursor, err := r.collection.Find(ctx, toBSON(filter), opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to find audit records")

		return nil, fmt.Errorf("failed to find audit records: %w", err)
	}
	defer cursor.Close(ctx)

	res = []model.Record{}
	if err = cursor.All(ctx, &res); err != nil {
		log.Error().Err(err).Msg("failed to decode audit records")

		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) Count(ctx context.Context, filter dto.Filter) (res int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelMongoScopeName, constant.OtelMongoScopeName+".audit.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := r.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		log.Error().Err(err).Msg("failed to count audit records")

		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return int(total), nil
}

func toBSON(filter dto.Filter) bson.M {
	query := bson.M{}

	if filter.Actor != "" {
		query[model.FieldActor] = filter.Actor
	}

	if filter.ResourceType != "" {
		query[model.FieldResourceType] = filter.ResourceType
	}

	if filter.ResourceID != "" {
		query[model.FieldResourceID] = filter.ResourceID
	}

	return query
}
