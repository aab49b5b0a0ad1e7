package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"stayvista/config"
	"stayvista/infras/otel/mocks"
	auditMocks "stayvista/internal/domains/audit/mocks"
	userMocks "stayvista/internal/domains/user/mocks"
	"stayvista/internal/domains/user/model"
	"stayvista/internal/domains/user/model/dto"
	"stayvista/internal/domains/user/service"
	cacheMocks "stayvista/shared/cache/mocks"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func withActor(email, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserEmail, email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func setup(t *testing.T) (*userMocks.MockUser, *auditMocks.MockAudit, *cacheMocks.MockRedisCache, service.User) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockAudit := auditMocks.NewMockAudit(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return mockRepo, mockAudit, mockCache, service.New(mockRepo, mockAudit, cfg, mockCache, mocks.NewOtel())
}

func TestUserService_Upsert(t *testing.T) {
	existing := model.User{Email: "guest@stayvista.com", Name: "Guest", Role: constant.RoleGuest}

	tests := []struct {
		name       string
		req        dto.UpsertUserRequest
		setupMock  func(repo *userMocks.MockUser, audit *auditMocks.MockAudit)
		wantStatus string
		wantErr    bool
	}{
		{
			name: "new user is inserted as guest",
			req:  dto.UpsertUserRequest{Email: "New@StayVista.com", Name: "New"},
			setupMock: func(repo *userMocks.MockUser, audit *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user model.User) error {
					assert.Equal(t, "new@stayvista.com", user.Email)
					assert.Equal(t, constant.RoleGuest, user.Role)
					assert.False(t, user.CreatedAt.IsZero())

					return nil
				})
				audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), "new@stayvista.com", nil, gomock.Any())
			},
		},
		{
			name: "existing user is returned unchanged",
			req:  dto.UpsertUserRequest{Email: existing.Email},
			setupMock: func(repo *userMocks.MockUser, _ *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
			},
		},
		{
			name: "existing user requesting host only updates status",
			req:  dto.UpsertUserRequest{Email: existing.Email, Status: "Requested"},
			setupMock: func(repo *userMocks.MockUser, audit *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, constant.UserStatusRequested, fields[model.FieldStatus])
					assert.NotContains(t, fields, model.FieldRole)

					return nil
				})
				audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), existing.Email, gomock.Any(), gomock.Any())
			},
			wantStatus: constant.UserStatusRequested,
		},
		{
			name: "concurrent first login returns stored user",
			req:  dto.UpsertUserRequest{Email: existing.Email},
			setupMock: func(repo *userMocks.MockUser, _ *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
			},
		},
		{
			name: "repository error",
			req:  dto.UpsertUserRequest{Email: existing.Email},
			setupMock: func(repo *userMocks.MockUser, _ *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, audit, _, svc := setup(t)
			tt.setupMock(repo, audit)

			res, err := svc.Upsert(context.Background(), tt.req)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, res.Email)
			assert.Equal(t, tt.wantStatus, res.Status)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	user := model.User{Email: "guest@stayvista.com", Role: constant.RoleGuest}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache)
		wantCode  int
	}{
		{
			name: "self lookup",
			ctx:  withActor(user.Email, constant.RoleGuest),
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
		},
		{
			name:      "other user is forbidden",
			ctx:       withActor("other@stayvista.com", constant.RoleHost),
			setupMock: func(_ *userMocks.MockUser, _ *cacheMocks.MockRedisCache) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name: "admin lookup of unknown user",
			ctx:  withActor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, cache, svc := setup(t)
			tt.setupMock(repo, cache)

			res, err := svc.Get(tt.ctx, user.Email)
			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, user.Email, res.Email)
		})
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	user := model.User{Email: "guest@stayvista.com", Role: constant.RoleGuest, Status: constant.UserStatusRequested}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(repo *userMocks.MockUser, audit *auditMocks.MockAudit)
		wantCode  int
	}{
		{
			name: "admin promotes guest to host",
			ctx:  withActor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(repo *userMocks.MockUser, audit *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, constant.RoleHost, fields[model.FieldRole])
					assert.Equal(t, constant.UserStatusApproved, fields[model.FieldStatus])
					assert.Equal(t, "admin@stayvista.com", fields[constant.FieldModifiedBy])

					return nil
				})
				audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), user.Email, gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, _, _, _ string, before, after any) {
						assert.Equal(t, constant.RoleGuest, before.(model.User).Role)
						assert.Equal(t, constant.RoleHost, after.(model.User).Role)
					})
			},
		},
		{
			name:      "host cannot change roles",
			ctx:       withActor("host@stayvista.com", constant.RoleHost),
			setupMock: func(_ *userMocks.MockUser, _ *auditMocks.MockAudit) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name: "unknown user",
			ctx:  withActor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(repo *userMocks.MockUser, _ *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "update failure",
			ctx:  withActor("admin@stayvista.com", constant.RoleAdmin),
			setupMock: func(repo *userMocks.MockUser, _ *auditMocks.MockAudit) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, audit, _, svc := setup(t)
			tt.setupMock(repo, audit)

			err := svc.UpdateRole(tt.ctx, user.Email, dto.UpdateRoleRequest{Role: constant.RoleHost, Status: constant.UserStatusApproved})
			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestUserService_UpdateStatus(t *testing.T) {
	repo, audit, _, svc := setup(t)

	user := model.User{Email: "guest@stayvista.com", Role: constant.RoleGuest}

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	audit.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), user.Email, gomock.Any(), gomock.Any())

	err := svc.UpdateStatus(withActor(user.Email, constant.RoleGuest), user.Email, dto.UpdateStatusRequest{Status: constant.UserStatusRequested})
	assert.NoError(t, err)

	err = svc.UpdateStatus(withActor("other@stayvista.com", constant.RoleGuest), user.Email, dto.UpdateStatusRequest{Status: constant.UserStatusRequested})
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestUserService_Role(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache)
		want      string
		wantErr   bool
	}{
		{
			name: "cache hit",
			setupMock: func(_ *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
					*(value.(*string)) = constant.RoleAdmin

					return nil
				})
			},
			want: constant.RoleAdmin,
		},
		{
			name: "stored role",
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), model.FieldEmail, model.FieldRole).Return(model.User{Email: "h@stayvista.com", Role: constant.RoleHost}, nil)
			},
			want: constant.RoleHost,
		},
		{
			name: "unknown user defaults to guest",
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			want: constant.RoleGuest,
		},
		{
			name: "repository error",
			setupMock: func(repo *userMocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, cache, svc := setup(t)
			tt.setupMock(repo, cache)

			role, err := svc.Role(context.Background(), "h@stayvista.com")
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}
