package service_test

import (
	"context"
	"errors"
	"testing"

	"stayvista/infras/otel/mocks"
	auditMocks "stayvista/internal/domains/audit/mocks"
	"stayvista/internal/domains/audit/model"
	"stayvista/internal/domains/audit/model/dto"
	"stayvista/internal/domains/audit/service"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := auditMocks.NewMockAuditLog(ctrl)
	svc := service.New(mockRepo, mocks.NewOtel())

	type room struct {
		Booked bool `json:"booked"`
	}

	tests := []struct {
		name      string
		ctx       context.Context
		wantActor string
		repoErr   error
	}{
		{
			name: "records actor and client ip",
			ctx: context.WithValue(
				context.WithValue(context.Background(), constant.ContextKeyUserEmail, "admin@stayvista.com"),
				constant.ContextKeyClientIP, "10.0.0.1"),
			wantActor: "admin@stayvista.com",
		},
		{
			name:      "falls back to system actor",
			ctx:       context.Background(),
			wantActor: constant.ContextSystem,
		},
		{
			name:      "repository failure is swallowed",
			ctx:       context.Background(),
			wantActor: constant.ContextSystem,
			repoErr:   errors.New("mongo down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.EXPECT().
				Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, record model.Record) error {
					assert.Equal(t, tt.wantActor, record.Actor)
					assert.Equal(t, model.ActionUpdateRoomStatus, record.Action)
					assert.Equal(t, false, record.Before["booked"])
					assert.Equal(t, true, record.After["booked"])

					return tt.repoErr
				})

			svc.Record(tt.ctx, model.ActionUpdateRoomStatus, model.ResourceRoom, "room-1", room{Booked: false}, room{Booked: true})
		})
	}
}

func TestAuditService_GetAll(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 2}

	tests := []struct {
		name      string
		setupMock func(repo *auditMocks.MockAuditLog)
		wantErr   bool
		wantTotal int
		wantPages int
	}{
		{
			name: "success",
			setupMock: func(repo *auditMocks.MockAuditLog) {
				repo.EXPECT().Count(gomock.Any(), dto.Filter{}).Return(3, nil)
				repo.EXPECT().GetAll(gomock.Any(), params, dto.Filter{}).Return([]model.Record{
					{ID: primitive.NewObjectID(), Action: model.ActionDeleteRoom},
					{ID: primitive.NewObjectID(), Action: model.ActionCreateRoom},
				}, nil)
			},
			wantTotal: 3,
			wantPages: 2,
		},
		{
			name: "count error",
			setupMock: func(repo *auditMocks.MockAuditLog) {
				repo.EXPECT().Count(gomock.Any(), dto.Filter{}).Return(0, errors.New("mongo down"))
				repo.EXPECT().GetAll(gomock.Any(), params, dto.Filter{}).Return(nil, nil).AnyTimes()
			},
			wantErr: true,
		},
		{
			name: "find error",
			setupMock: func(repo *auditMocks.MockAuditLog) {
				repo.EXPECT().Count(gomock.Any(), dto.Filter{}).Return(3, nil).AnyTimes()
				repo.EXPECT().GetAll(gomock.Any(), params, dto.Filter{}).Return(nil, errors.New("mongo down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := auditMocks.NewMockAuditLog(ctrl)
			tt.setupMock(mockRepo)

			svc := service.New(mockRepo, mocks.NewOtel())

			res, err := svc.GetAll(context.Background(), params, dto.Filter{})
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, res.TotalData)
			assert.Equal(t, tt.wantPages, res.TotalPage)
			assert.Len(t, res.Records, 2)
		})
	}
}
