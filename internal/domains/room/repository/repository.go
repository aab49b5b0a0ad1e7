package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stayvista/infras/otel"
	"stayvista/infras/postgres"
	bookingModel "stayvista/internal/domains/booking/model"
	"stayvista/internal/domains/room/model"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/logger"
	gRepo "stayvista/shared/repository"

	"github.com/jmoiron/sqlx"
)

var ErrActiveBookings = errors.New("room has active bookings")

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Room, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	// DeleteIdle removes the room unless it has an active booking ending after today.
	// It returns the deleted room, or a zero room when none matched.
	DeleteIdle(ctx context.Context, id string, today time.Time) (model.Room, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

func (r *repositoryImpl) DeleteIdle(ctx context.Context, id string, today time.Time) (room model.Room, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.DeleteIdle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	err = r.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		locked, err := r.GetForUpdateTx(ctx, tx, filter)
		if err != nil || locked.ID == constant.Empty {
			return err
		}

		busy := false

		query, args, err := sqlx.In(
			fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ? AND %s IN (?) AND %s > ?)",
				bookingModel.TableName, bookingModel.FieldRoomID, bookingModel.FieldStatus, bookingModel.FieldCheckOut),
			id, bookingModel.ActiveStatuses(), today)
		if err != nil {
			return fmt.Errorf("failed to build active booking query: %w", err)
		}

		scope.SetAttribute(constant.OtelQueryAttributeKey, query)

		if err = tx.GetContext(ctx, &busy, tx.Rebind(query), args...); err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to check active bookings: %w", err)
		}

		if busy {
			return ErrActiveBookings
		}

		if err = r.DeleteTx(ctx, tx, filter); err != nil {
			return err
		}

		room = locked

		return nil
	})

	return room, err
}
