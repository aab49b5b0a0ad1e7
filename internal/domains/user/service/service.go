package service

import (
	"context"
	"fmt"

	"stayvista/config"
	"stayvista/infras/otel"
	auditModel "stayvista/internal/domains/audit/model"
	auditService "stayvista/internal/domains/audit/service"
	"stayvista/internal/domains/user/model"
	"stayvista/internal/domains/user/model/dto"
	"stayvista/internal/domains/user/repository"
	"stayvista/shared"
	"stayvista/shared/cache"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"
	gRepo "stayvista/shared/repository"
	"stayvista/shared/timezone"

	"github.com/rs/zerolog/log"
)

var errUserNotFound = failure.NotFound("user not found")

type User interface {
	Upsert(ctx context.Context, req dto.UpsertUserRequest) (dto.UserResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error)
	Get(ctx context.Context, email string) (dto.UserResponse, error)
	UpdateStatus(ctx context.Context, email string, req dto.UpdateStatusRequest) error
	UpdateRole(ctx context.Context, email string, req dto.UpdateRoleRequest) error
	// Role returns the stored role of email, guest when the user is unknown.
	Role(ctx context.Context, email string) (string, error)
}

type serviceImpl struct {
	repo  repository.User
	audit auditService.Audit
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, audit auditService.Audit, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		audit: audit,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Upsert(ctx context.Context, req dto.UpsertUserRequest) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upsert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()
	filter := shared.FilterByID(req.Email, model.FieldEmail, model.TableName)

	existing, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if existing.Email != constant.Empty {
		if req.Status != constant.UserStatusRequested || existing.Status == req.Status {
			res.FromModel(existing)

			return res, nil
		}

		fields := map[string]any{
			model.FieldStatus:        req.Status,
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: req.Email,
		}

		if err = s.repo.Update(ctx, fields, filter); err != nil {
			log.Error().Err(err).Msg("failed to update user status")

			return res, fmt.Errorf("failed to update user status: %w", err)
		}

		updated := existing
		updated.Status = req.Status
		updated.ModifiedAt = timezone.Now()

		s.audit.Record(ctx, auditModel.ActionUpdateUserStatus, auditModel.ResourceUser, req.Email, existing, updated)
		s.invalidate(ctx, req.Email)

		res.FromModel(updated)

		return res, nil
	}

	user := req.ToModel()

	if err = s.repo.Insert(ctx, user); err != nil {
		if !gRepo.IsUniqueViolation(err) {
			log.Error().Err(err).Msg("failed to create user")

			return res, fmt.Errorf("failed to create user: %w", err)
		}

		// a concurrent first login won the insert
		if user, err = s.repo.Get(ctx, filter); err != nil {
			return res, fmt.Errorf("failed to get user: %w", err)
		}
	} else {
		s.audit.Record(ctx, auditModel.ActionUpsertUser, auditModel.ResourceUser, user.Email, nil, user)
		s.invalidate(ctx, user.Email)
	}

	res.FromModel(user)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUsersResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(model.CacheKeyGetAll, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for users")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")

		return res, fmt.Errorf("failed to count users: %w", err)
	}

	users, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get users")

		return res, fmt.Errorf("failed to get users: %w", err)
	}

	res.FromModels(users, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save users to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, email string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !s.selfOrAdmin(ctx, email) {
		return res, failure.ForbiddenError
	}

	cacheKey := shared.BuildCacheKey(model.CacheKeyGet, email)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	user, err := s.repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Email == constant.Empty {
		return res, errUserNotFound
	}

	res.FromModel(user)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, email string, req dto.UpdateStatusRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !s.selfOrAdmin(ctx, email) {
		return failure.ForbiddenError
	}

	return s.update(ctx, email, auditModel.ActionUpdateUserStatus, shared.TransformFields(req, shared.ActorEmail(ctx)))
}

func (s *serviceImpl) UpdateRole(ctx context.Context, email string, req dto.UpdateRoleRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateRole")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !shared.IsAdmin(ctx) {
		return failure.ForbiddenError
	}

	fields := shared.TransformFields(req, shared.ActorEmail(ctx))
	// an empty status clears a pending host request
	fields[model.FieldStatus] = req.Status

	return s.update(ctx, email, auditModel.ActionUpdateUserRole, fields)
}

func (s *serviceImpl) update(ctx context.Context, email, action string, fields map[string]any) error {
	filter := shared.FilterByID(email, model.FieldEmail, model.TableName)

	before, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return fmt.Errorf("failed to get user: %w", err)
	}

	if before.Email == constant.Empty {
		return errUserNotFound
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to update user")

		return fmt.Errorf("failed to update user: %w", err)
	}

	after := before
	if role, ok := fields[model.FieldRole].(string); ok {
		after.Role = role
	}

	if status, ok := fields[model.FieldStatus].(string); ok {
		after.Status = status
	}

	s.audit.Record(ctx, action, auditModel.ResourceUser, email, before, after)
	s.invalidate(ctx, email)

	return nil
}

func (s *serviceImpl) Role(ctx context.Context, email string) (role string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Role")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(model.CacheKeyRole, email)

	if err = s.cache.Get(ctx, cacheKey, &role); err == nil && role != constant.Empty {
		return role, nil
	}

	user, err := s.repo.Get(ctx, shared.FilterByID(email, model.FieldEmail, model.TableName), model.FieldEmail, model.FieldRole)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user role")

		return constant.Empty, fmt.Errorf("failed to get user role: %w", err)
	}

	role = user.Role
	if role == constant.Empty {
		role = constant.RoleGuest
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, role, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user role to cache")
		}
	}()

	return role, nil
}

func (s *serviceImpl) selfOrAdmin(ctx context.Context, email string) bool {
	return shared.ActorEmail(ctx) == email || shared.IsAdmin(ctx)
}

func (s *serviceImpl) invalidate(ctx context.Context, email string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(model.CacheKeyGet, email)); err != nil {
			log.Error().Err(err).Msg("failed to delete user cache")
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(model.CacheKeyRole, email)); err != nil {
			log.Error().Err(err).Msg("failed to delete user role cache")
		}

		shared.InvalidateCaches(c, s.cache, model.CacheKeyGetAll)
		shared.InvalidateCaches(c, s.cache, model.CacheKeyCount)
	}()
}
