package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/infras/s3"
	auditModel "stayvista/internal/domains/audit/model"
	auditService "stayvista/internal/domains/audit/service"
	"stayvista/internal/domains/booking/pricing"
	"stayvista/internal/domains/room/model"
	"stayvista/internal/domains/room/model/dto"
	"stayvista/internal/domains/room/repository"
	"stayvista/shared"
	"stayvista/shared/cache"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"
	"stayvista/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	errRoomNotFound  = failure.NotFound("room not found")
	errInvalidRoomID = failure.BadRequestFromString("invalid room id")
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	// GetAll lists rooms of category; an empty or "null" category lists every room.
	GetAll(ctx context.Context, req gDto.QueryParams, category string) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	GetByHost(ctx context.Context, req gDto.QueryParams, email string) (dto.GetRoomsResponse, error)
	UpdateStatus(ctx context.Context, id string, booked bool) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Room
	audit auditService.Audit
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Room, audit auditService.Audit, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Room {
	return &serviceImpl{
		repo:  repo,
		audit: audit,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	host := shared.ActorEmail(ctx)
	bucketName := s.cfg.External.S3.BucketName

	// validate before uploading anything
	if _, err = req.ToModel(host, constant.Empty); err != nil {
		return res, err
	}

	imageURL := constant.Empty
	uploadedObjectName := constant.Empty

	if req.ImageHeader != nil {
		filename := uuid.NewString() + path.Ext(req.ImageHeader.Filename)

		imageURL, err = s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.ImageHeader, filename)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload room image")

			return res, fmt.Errorf("failed to upload image: %w", err)
		}

		uploadedObjectName = filename
	}

	room, err := req.ToModel(host, imageURL)
	if err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		if uploadedObjectName != constant.Empty {
			_ = s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName)
		}

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	s.audit.Record(ctx, auditModel.ActionCreateRoom, auditModel.ResourceRoom, room.ID, nil, room)
	s.invalidate(ctx, constant.Empty)

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, category string) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if category != constant.Empty && category != constant.CategoryEmpty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldCategory,
			Operator: gDto.FilterOperatorEq,
			Value:    category,
			Table:    model.TableName,
		})
	}

	return s.list(ctx, req, filter)
}

func (s *serviceImpl) GetByHost(ctx context.Context, req gDto.QueryParams, email string) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByHost")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if shared.ActorEmail(ctx) != email && !shared.IsAdmin(ctx) {
		return res, failure.ForbiddenError
	}

	return s.list(ctx, req, shared.FilterByID(email, model.FieldHostEmail, model.TableName))
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(model.CacheKeyGetAll, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	rooms, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(rooms, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(model.CacheKeyCount, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = uuid.Parse(id); err != nil {
		return res, errInvalidRoomID
	}

	cacheKey := shared.BuildCacheKey(model.CacheKeyGet, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, errRoomNotFound
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, booked bool) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.owned(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]any{
		model.FieldBooked:        booked,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.ActorEmail(ctx),
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room status")

		return fmt.Errorf("failed to update room status: %w", err)
	}

	after := room
	after.Booked = booked

	s.audit.Record(ctx, auditModel.ActionUpdateRoomStatus, auditModel.ResourceRoom, id, room, after)
	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.owned(ctx, id); err != nil {
		return err
	}

	room, err := s.repo.DeleteIdle(ctx, id, pricing.Date(timezone.Now()))
	if errors.Is(err, repository.ErrActiveBookings) {
		return failure.Conflict("room has active bookings") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	if room.ID == constant.Empty {
		return errRoomNotFound
	}

	bucketName := s.cfg.External.S3.BucketName
	if objectName := s.s3.GetObjectNameFromURL(bucketName, room.Image); objectName != constant.Empty {
		if err := s.s3.DeleteFile(ctx, bucketName, model.EntityName, objectName); err != nil {
			log.Warn().Err(err).Str("object", objectName).Msg("failed to delete room image")
		}
	}

	s.audit.Record(ctx, auditModel.ActionDeleteRoom, auditModel.ResourceRoom, id, room, nil)
	s.invalidate(ctx, id)

	return nil
}

// owned loads the room and checks the caller is its host or an admin.
func (s *serviceImpl) owned(ctx context.Context, id string) (model.Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Room{}, errInvalidRoomID
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, errRoomNotFound
	}

	if !room.IsHostedBy(shared.ActorEmail(ctx)) && !shared.IsAdmin(ctx) {
		return room, failure.ForbiddenError
	}

	return room, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(model.CacheKeyGet, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete room cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, model.CacheKeyGetAll)
		shared.InvalidateCaches(c, s.cache, model.CacheKeyCount)
	}()
}
