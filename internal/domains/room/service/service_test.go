package service_test

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"stayvista/config"
	"stayvista/infras/otel/mocks"
	s3Mocks "stayvista/infras/s3/mocks"
	auditMocks "stayvista/internal/domains/audit/mocks"
	roomMocks "stayvista/internal/domains/room/mocks"
	"stayvista/internal/domains/room/model"
	"stayvista/internal/domains/room/model/dto"
	"stayvista/internal/domains/room/repository"
	"stayvista/internal/domains/room/service"
	cacheMocks "stayvista/shared/cache/mocks"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const (
	roomID    = "6f1c2d3e-4b5a-4c6d-8e7f-901234567890"
	hostEmail = "host@stayvista.com"
)

type fixture struct {
	repo  *roomMocks.MockRoom
	audit *auditMocks.MockAudit
	cache *cacheMocks.MockRedisCache
	s3    *s3Mocks.MockS3
	svc   service.Room
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:  roomMocks.NewMockRoom(ctrl),
		audit: auditMocks.NewMockAudit(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "stayvista"

	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.audit, cfg, f.cache, mocks.NewOtel(), f.s3)

	return f
}

func actor(email, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserEmail, email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func validRequest() dto.CreateRoomRequest {
	return dto.CreateRoomRequest{
		Title:    "Beach house",
		Location: "Bali",
		Category: "Beach",
		Price:    100,
		From:     "2024-01-01",
		To:       "2024-01-31",
		Host:     dto.HostRequest{Name: "Host"},
	}
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       func() dto.CreateRoomRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "json body with image url",
			req: func() dto.CreateRoomRequest {
				req := validRequest()
				req.Image = "https://img.example.com/beach.jpg"

				return req
			},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, room model.Room) error {
					assert.Equal(t, int64(10000), room.PriceCents)
					assert.Equal(t, hostEmail, room.HostEmail)
					assert.Equal(t, "https://img.example.com/beach.jpg", room.Image)
					assert.False(t, room.Booked)

					return nil
				})
				f.audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), nil, gomock.Any())
			},
		},
		{
			name: "uploaded image is removed when insert fails",
			req: func() dto.CreateRoomRequest {
				req := validRequest()
				req.ImageHeader = &multipart.FileHeader{Filename: "beach.png"}

				return req
			},
			setupMock: func(f fixture) {
				f.s3.EXPECT().UploadFile(gomock.Any(), "stayvista", model.EntityName, gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn.example.com/room/x.png", nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
				f.s3.EXPECT().DeleteFile(gomock.Any(), "stayvista", model.EntityName, gomock.Any()).Return(nil)
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "negative price never uploads",
			req: func() dto.CreateRoomRequest {
				req := validRequest()
				req.Price = -1
				req.ImageHeader = &multipart.FileHeader{Filename: "beach.png"}

				return req
			},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "availability window must be forward",
			req: func() dto.CreateRoomRequest {
				req := validRequest()
				req.From, req.To = req.To, req.From

				return req
			},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(actor(hostEmail, constant.RoleHost), tt.req())
			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, float64(100), res.Price)
			assert.Equal(t, "2024-01-01", res.From)
			assert.Equal(t, "2024-01-31", res.To)
		})
	}
}

func TestRoomService_GetAll(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		wantFilters int
	}{
		{name: "no category", category: "", wantFilters: 0},
		{name: "null category from the client", category: "null", wantFilters: 0},
		{name: "category filter", category: "Beach", wantFilters: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
			f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
				assert.Len(t, filter.Filters, tt.wantFilters)

				return 1, nil
			})
			f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Room{{ID: roomID, Category: "Beach"}}, nil)

			res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{}, tt.category)
			assert.NoError(t, err)
			assert.Equal(t, 1, res.TotalData)
			assert.Len(t, res.Rooms, 1)
		})
	}
}

func TestRoomService_Get(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:      "invalid id",
			id:        "not-an-id",
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "not found",
			id:   roomID,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "found",
			id:   roomID,
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: roomID, PriceCents: 12550}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), tt.id)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, 125.5, res.Price)
		})
	}
}

func TestRoomService_GetByHost(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByHost(actor("other@stayvista.com", constant.RoleHost), gDto.QueryParams{}, hostEmail)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestRoomService_Delete(t *testing.T) {
	stored := model.Room{ID: roomID, HostEmail: hostEmail, Image: "https://cdn.example.com/room/a.png"}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "host deletes own room and its image",
			ctx:  actor(hostEmail, constant.RoleHost),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().DeleteIdle(gomock.Any(), roomID, gomock.Any()).Return(stored, nil)
				f.s3.EXPECT().GetObjectNameFromURL("stayvista", stored.Image).Return("a.png")
				f.s3.EXPECT().DeleteFile(gomock.Any(), "stayvista", model.EntityName, "a.png").Return(nil)
				f.audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), roomID, gomock.Any(), nil)
			},
		},
		{
			name: "other host is forbidden",
			ctx:  actor("other@stayvista.com", constant.RoleHost),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "active bookings conflict",
			ctx:  actor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().DeleteIdle(gomock.Any(), roomID, gomock.Any()).Return(model.Room{}, repository.ErrActiveBookings)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unknown room",
			ctx:  actor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(tt.ctx, roomID)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestRoomService_UpdateStatus(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: roomID, HostEmail: hostEmail}, nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.Equal(t, true, fields[model.FieldBooked])

		return nil
	})
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), roomID, gomock.Any(), gomock.Any())

	assert.NoError(t, f.svc.UpdateStatus(actor(hostEmail, constant.RoleHost), roomID, true))
}
