package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stayvista/infras/otel"
	"stayvista/infras/postgres"
	"stayvista/internal/domains/booking/model"
	gDto "stayvista/shared/dto"
	gRepo "stayvista/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	WithTx(ctx context.Context, fn gRepo.TxFunc) error
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Booking) error
	ExistTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (bool, error)
	UpdateTxAffected(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
	InsertEventTx(ctx context.Context, tx *sqlx.Tx, event model.Event) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	events gRepo.Repository[model.Event]
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		events:     gRepo.NewRepository[model.Event](model.EventEntityName, model.EventTableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) InsertEventTx(ctx context.Context, tx *sqlx.Tx, event model.Event) error {
	return r.events.InsertTx(ctx, tx, event) //nolint:wrapcheck
}
