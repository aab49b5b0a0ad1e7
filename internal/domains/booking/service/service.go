package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/infras/stripe"
	auditModel "stayvista/internal/domains/audit/model"
	auditService "stayvista/internal/domains/audit/service"
	"stayvista/internal/domains/booking/event"
	"stayvista/internal/domains/booking/model"
	"stayvista/internal/domains/booking/model/dto"
	"stayvista/internal/domains/booking/pricing"
	"stayvista/internal/domains/booking/repository"
	roomModel "stayvista/internal/domains/room/model"
	roomRepository "stayvista/internal/domains/room/repository"
	"stayvista/shared"
	"stayvista/shared/cache"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"
	sharedModel "stayvista/shared/model"
	gRepo "stayvista/shared/repository"
	"stayvista/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	argCurrentStatus = "current_status"
	argRangeStart    = "range_start"
	argRangeEnd      = "range_end"
	argHoldDeadline  = "hold_deadline"
	argRefundDue     = "refund_due_before"
	argStaleSince    = "stale_since"

	refundKeyPrefix  = "refund-"
	expiryBatchSize  = 100
	metadataBooking  = "booking_id"
	metadataRoom     = "room_id"
	metadataGuest    = "guest_email"
	sortDirAscending = "ASC"

	// owed refunds younger than this may still be in flight in the request that owes them
	refundGrace = time.Minute
)

var clock = timezone.Now

var (
	errBookingNotFound    = failure.NotFound("booking not found")
	errInvalidBookingID   = failure.BadRequestFromString("invalid booking id")
	errRoomNotFound       = failure.NotFound("room not found")
	errInvalidRoomID      = failure.BadRequestFromString("invalid room id")
	errInvalidDate        = failure.BadRequestFromString("dates must be formatted as YYYY-MM-DD")
	errInvalidRange       = failure.BadRequestFromString("check-out must be after check-in")
	errPastCheckIn        = failure.BadRequestFromString("check-in cannot be in the past")
	errOutsideWindow      = failure.BadRequestFromString("dates are outside the room's availability")
	errZeroTotal          = failure.BadRequestFromString("booking total must be positive")
	errOwnRoom            = failure.Forbidden("hosts cannot book their own room")
	errDatesTaken         = failure.Conflict("room is already booked for these dates")
	errStaleTransition    = failure.Conflict("booking status changed concurrently")
	errHoldLost           = failure.Conflict("booking hold is no longer active, payment refunded")
	errNoPaymentReference = failure.Conflict("booking has no payment reference")
	errAmountMismatch     = failure.Conflict("payment amount does not match the booking total")
	errPaymentIncomplete  = failure.BadRequestFromString("payment has not succeeded")
	errPaymentUnavailable = failure.BadGateway("payment processor unavailable")
)

type Booking interface {
	Quote(ctx context.Context, roomID, from, to string) (dto.QuoteResponse, error)
	// Reserve holds the dates as a pending booking and opens a payment intent for it.
	Reserve(ctx context.Context, req dto.ReserveRequest) (dto.ReservationResponse, error)
	Confirm(ctx context.Context, id string, req dto.ConfirmRequest) (dto.BookingResponse, error)
	// Record stores a booking the guest already paid for through a client-side intent.
	Record(ctx context.Context, req dto.RecordRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	// ExpireHolds moves pending bookings past their hold deadline to expired and
	// returns how many were moved.
	ExpireHolds(ctx context.Context) (int, error)
	// SettleRefunds retries refunds that did not go through and refunds paid bookings
	// left unconfirmed for longer than the hold TTL. It returns how many were settled.
	SettleRefunds(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	GetHosted(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
}

type serviceImpl struct {
	repo     repository.Booking
	roomRepo roomRepository.Room
	gateway  stripe.Gateway
	events   event.Publisher
	audit    auditService.Audit
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepository.Room,
	gateway stripe.Gateway,
	events event.Publisher,
	audit auditService.Audit,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		gateway:  gateway,
		events:   events,
		audit:    audit,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

// stay is a priced, validated date range of one room.
type stay struct {
	room     roomModel.Room
	checkIn  time.Time
	checkOut time.Time
	nights   int64
	total    int64
}

func (s *serviceImpl) Quote(ctx context.Context, roomID, from, to string) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	st, err := s.stay(ctx, roomID, from, to)
	if err != nil {
		return res, err
	}

	return dto.QuoteResponse{
		RoomID:     st.room.ID,
		From:       st.checkIn.Format(constant.DayFormat),
		To:         st.checkOut.Format(constant.DayFormat),
		Nights:     st.nights,
		Price:      pricing.FromMinorUnits(st.room.PriceCents),
		PriceCents: st.room.PriceCents,
		Total:      pricing.FromMinorUnits(st.total),
		TotalCents: st.total,
		Currency:   s.cfg.Stripe.Currency,
	}, nil
}

func (s *serviceImpl) Reserve(ctx context.Context, req dto.ReserveRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reserve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	guest := shared.ActorEmail(ctx)

	st, err := s.stay(ctx, req.RoomID, req.From, req.To)
	if err != nil {
		return res, err
	}

	if st.room.IsHostedBy(guest) {
		return res, errOwnRoom
	}

	if st.total < 1 {
		return res, errZeroTotal
	}

	now := timezone.Now()
	holdUntil := now.Add(time.Duration(s.cfg.Booking.HoldTTLMinutes) * time.Minute)

	booking := s.newBooking(st, guest, req.GuestName, now)
	booking.HoldExpiresAt = &holdUntil

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.holdRoom(ctx, tx, booking); err != nil {
			return err
		}

		return s.insertTx(ctx, tx, &booking, "reserved")
	})
	if err != nil {
		return res, s.txError(err, "failed to reserve room")
	}

	s.events.Publish(ctx, booking, model.StatusNone)

	intent, err := s.gateway.CreateIntent(ctx, booking.TotalCents, booking.Currency, booking.ID, map[string]string{
		metadataBooking: booking.ID,
		metadataRoom:    booking.RoomID,
		metadataGuest:   booking.GuestEmail,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to create payment intent, releasing hold")
		s.fail(ctx, &booking, "payment intent creation failed")

		return res, errPaymentUnavailable
	}

	fields := map[string]any{
		model.FieldPaymentIntentID: intent.ID,
		constant.FieldModifiedAt:   timezone.Now(),
		constant.FieldModifiedBy:   guest,
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to store payment reference, releasing hold")

		if cancelErr := s.gateway.CancelIntent(ctx, intent.ID); cancelErr != nil {
			log.Warn().Err(cancelErr).Str("intent_id", intent.ID).Msg("failed to cancel orphaned payment intent")
		}

		s.fail(ctx, &booking, "storing payment reference failed")

		return res, fmt.Errorf("failed to store payment reference: %w", err)
	}

	booking.PaymentIntentID = &intent.ID

	res.Booking.FromModel(booking)
	res.ClientSecret = intent.ClientSecret

	return res, nil
}

func (s *serviceImpl) Confirm(ctx context.Context, id string, req dto.ConfirmRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.GuestEmail != shared.ActorEmail(ctx) && !shared.IsAdmin(ctx) {
		return res, failure.ForbiddenError
	}

	switch booking.Status {
	case model.StatusConfirmed:
		res.FromModel(booking)

		return res, nil
	case model.StatusPending, model.StatusPaid:
	default:
		return res, failure.Conflict(fmt.Sprintf("booking cannot be confirmed while %s", booking.Status)) // nolint:wrapcheck
	}

	intent, err := s.verify(ctx, booking.IntentID(), booking.TotalCents)
	if err != nil {
		return res, err
	}

	if booking.Status == model.StatusPending {
		transactionID := req.TransactionID
		if transactionID == constant.Empty {
			transactionID = intent.ID
		}

		err = s.move(ctx, &booking, model.StatusPaid, "payment succeeded", map[string]any{
			model.FieldTransactionID: transactionID,
		})

		switch {
		case errors.Is(err, errStaleTransition):
			current, findErr := s.find(ctx, id)
			if findErr != nil {
				return res, findErr
			}

			switch current.Status {
			case model.StatusConfirmed:
				res.FromModel(current)

				return res, nil
			case model.StatusPaid:
				booking = current
			default:
				// the hold was released while the guest was paying
				if refundErr := s.refundLate(ctx, current); refundErr != nil {
					return res, errPaymentUnavailable
				}

				return res, errHoldLost
			}
		case err != nil:
			return res, s.txError(err, "failed to mark booking paid")
		default:
			booking.TransactionID = &transactionID
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.roomRepo.GetForUpdateTx(ctx, tx, roomFilter(booking.RoomID))
		if err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if room.ID == constant.Empty {
			return errRoomNotFound
		}

		if err := s.setBookedTx(ctx, tx, booking.RoomID, true); err != nil {
			return err
		}

		return s.transitionTx(ctx, tx, &booking, model.StatusConfirmed, "booking confirmed", nil)
	})
	if err != nil {
		if errors.Is(err, errStaleTransition) {
			current, findErr := s.find(ctx, id)
			if findErr == nil && current.Status == model.StatusConfirmed {
				res.FromModel(current)

				return res, nil
			}

			return res, err
		}

		log.Error().Err(err).Str("booking_id", id).Msg("failed to confirm booking, refunding payment")

		booking.Status = model.StatusPaid
		if compErr := s.compensate(ctx, &booking, "confirmation failed"); compErr != nil {
			log.Error().Err(compErr).Str("booking_id", id).Msg("failed to compensate unconfirmed booking")
		}

		return res, s.txError(err, "failed to confirm booking")
	}

	s.events.Publish(ctx, booking, model.StatusPaid)
	s.invalidateRoom(ctx, booking.RoomID)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Record(ctx context.Context, req dto.RecordRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Record")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	guest := shared.ActorEmail(ctx)

	existing, err := s.byIntent(ctx, req.TransactionID)
	if err != nil {
		return res, err
	}

	if existing.ID != constant.Empty {
		return s.recorded(ctx, existing)
	}

	st, err := s.stay(ctx, req.RoomID, req.From, req.To)
	if err != nil {
		return res, err
	}

	if st.room.IsHostedBy(guest) {
		return res, errOwnRoom
	}

	if _, err = s.verify(ctx, req.TransactionID, st.total); err != nil {
		return res, err
	}

	booking := s.newBooking(st, guest, req.Guest.Name, timezone.Now())
	booking.PaymentIntentID = &req.TransactionID
	booking.TransactionID = &req.TransactionID

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.holdRoom(ctx, tx, booking); err != nil {
			return err
		}

		if err := s.insertTx(ctx, tx, &booking, "payment recorded"); err != nil {
			return err
		}

		if err := s.transitionTx(ctx, tx, &booking, model.StatusPaid, "payment succeeded", nil); err != nil {
			return err
		}

		if err := s.setBookedTx(ctx, tx, booking.RoomID, true); err != nil {
			return err
		}

		return s.transitionTx(ctx, tx, &booking, model.StatusConfirmed, "booking confirmed", nil)
	})
	if err != nil {
		if gRepo.IsUniqueViolation(err) {
			// a concurrent request recorded the same payment first
			if existing, findErr := s.byIntent(ctx, req.TransactionID); findErr == nil && existing.ID != constant.Empty {
				return s.recorded(ctx, existing)
			}
		}

		log.Error().Err(err).Str("intent_id", req.TransactionID).Msg("failed to record booking, refunding payment")

		if refundErr := s.refund(ctx, booking); refundErr != nil {
			log.Error().Err(refundErr).Str("intent_id", req.TransactionID).Msg("failed to refund unrecorded payment")
		}

		return res, s.txError(err, "failed to record booking")
	}

	for _, step := range []struct{ from, to model.Status }{
		{model.StatusNone, model.StatusPending},
		{model.StatusPending, model.StatusPaid},
		{model.StatusPaid, model.StatusConfirmed},
	} {
		snapshot := booking
		snapshot.Status = step.to
		s.events.Publish(ctx, snapshot, step.from)
	}

	s.invalidateRoom(ctx, booking.RoomID)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) recorded(ctx context.Context, booking model.Booking) (res dto.BookingResponse, err error) {
	if booking.GuestEmail != shared.ActorEmail(ctx) && !shared.IsAdmin(ctx) {
		return res, failure.ForbiddenError
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !canView(ctx, booking) {
		return res, failure.ForbiddenError
	}

	before := booking
	reason := "cancelled by " + actor(ctx)

	switch booking.Status {
	case model.StatusPending:
		if err = s.move(ctx, &booking, model.StatusCancelled, reason, nil); err != nil {
			return res, s.txError(err, "failed to cancel booking")
		}

		s.release(ctx, booking)
	case model.StatusPaid:
		if err = s.move(ctx, &booking, model.StatusRefunded, reason, owed(booking)); err != nil {
			return res, s.txError(err, "failed to cancel booking")
		}

		s.settle(ctx, &booking)
	case model.StatusConfirmed:
		cancelled := booking

		err = s.repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
			if _, err := s.roomRepo.GetForUpdateTx(ctx, tx, roomFilter(booking.RoomID)); err != nil {
				return fmt.Errorf("failed to lock room: %w", err)
			}

			if err := s.transitionTx(ctx, tx, &cancelled, model.StatusCancelled, reason, owed(booking)); err != nil {
				return err
			}

			stillBooked, err := s.repo.ExistTx(ctx, tx, confirmedFilter(booking.RoomID))
			if err != nil {
				return fmt.Errorf("failed to check remaining bookings: %w", err)
			}

			return s.setBookedTx(ctx, tx, booking.RoomID, stillBooked)
		})
		if err != nil {
			return res, s.txError(err, "failed to cancel booking")
		}

		booking = cancelled

		s.settle(ctx, &booking)
		s.events.Publish(ctx, booking, model.StatusConfirmed)
		s.invalidateRoom(ctx, booking.RoomID)
	default:
		return res, failure.Conflict(fmt.Sprintf("booking cannot be cancelled while %s", booking.Status)) // nolint:wrapcheck
	}

	s.audit.Record(ctx, auditModel.ActionCancelBooking, auditModel.ResourceBooking, booking.ID, before, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) ExpireHolds(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExpireHolds")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusPending.String(), Table: model.TableName},
			gDto.Filter{Field: model.FieldHoldExpiresAt, Operator: gDto.FilterOperatorLess, Value: timezone.Now(), ArgName: argHoldDeadline, Table: model.TableName},
		},
	}

	bookings, err := s.repo.GetAll(ctx, oldestFirst(model.FieldHoldExpiresAt), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list expired holds")

		return 0, fmt.Errorf("failed to list expired holds: %w", err)
	}

	for i := range bookings {
		booking := bookings[i]

		if err := s.move(ctx, &booking, model.StatusExpired, "hold expired", nil); err != nil {
			if !errors.Is(err, errStaleTransition) {
				log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to expire hold")
			}

			continue
		}

		s.release(ctx, booking)
		count++
	}

	if count > 0 {
		log.Info().Int("expired", count).Msg("expired booking holds")
	}

	return count, nil
}

func (s *serviceImpl) SettleRefunds(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SettleRefunds")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now()

	due, err := s.repo.GetAll(ctx, oldestFirst(model.FieldRefundDueAt), gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRefundDueAt, Operator: gDto.FilterOperatorLess, Value: now.Add(-refundGrace), ArgName: argRefundDue, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list owed refunds")

		return 0, fmt.Errorf("failed to list owed refunds: %w", err)
	}

	for i := range due {
		if s.settle(ctx, &due[i]) {
			count++
		}
	}

	ttl := time.Duration(s.cfg.Booking.HoldTTLMinutes) * time.Minute

	stuck, err := s.repo.GetAll(ctx, oldestFirst(constant.FieldModifiedAt), gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusPaid.String(), Table: model.TableName},
			gDto.Filter{Field: constant.FieldModifiedAt, Operator: gDto.FilterOperatorLess, Value: now.Add(-ttl), ArgName: argStaleSince, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list unconfirmed payments")

		return count, fmt.Errorf("failed to list unconfirmed payments: %w", err)
	}

	for i := range stuck {
		booking := stuck[i]

		if err := s.compensate(ctx, &booking, "confirmation abandoned"); err != nil {
			if !errors.Is(err, errStaleTransition) {
				log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to refund unconfirmed booking")
			}

			continue
		}

		count++
	}

	if count > 0 {
		log.Info().Int("settled", count).Msg("settled owed refunds")
	}

	return count, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !canView(ctx, booking) {
		return res, failure.ForbiddenError
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, req, shared.FilterByID(shared.ActorEmail(ctx), model.FieldGuestEmail, model.TableName))
}

func (s *serviceImpl) GetHosted(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetHosted")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if shared.IsAdmin(ctx) {
		return s.list(ctx, req, gDto.FilterGroup{})
	}

	return s.list(ctx, req, shared.FilterByID(shared.ActorEmail(ctx), model.FieldHostEmail, model.TableName))
}

func (s *serviceImpl) list(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, req.Limit)

	return res, nil
}

// stay validates the requested range against the room and prices it.
func (s *serviceImpl) stay(ctx context.Context, roomID, from, to string) (res stay, err error) {
	if _, err = uuid.Parse(roomID); err != nil {
		return res, errInvalidRoomID
	}

	checkIn, err := timezone.ParseDate(from)
	if err != nil {
		return res, errInvalidDate
	}

	checkOut, err := timezone.ParseDate(to)
	if err != nil {
		return res, errInvalidDate
	}

	if _, err = pricing.Nights(checkIn, checkOut); err != nil {
		return res, errInvalidRange
	}

	if pricing.Date(checkIn).Before(pricing.Date(clock())) {
		return res, errPastCheckIn
	}

	room, err := s.roomRepo.Get(ctx, roomFilter(roomID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, errRoomNotFound
	}

	total, nights, err := pricing.Total(room.PriceCents, checkIn, checkOut)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !pricing.Contains(room.AvailableFrom, room.AvailableTo, checkIn, checkOut) {
		return res, errOutsideWindow
	}

	return stay{
		room:     room,
		checkIn:  pricing.Date(checkIn),
		checkOut: pricing.Date(checkOut),
		nights:   nights,
		total:    total,
	}, nil
}

func (s *serviceImpl) newBooking(st stay, guest, guestName string, now time.Time) model.Booking {
	return model.Booking{
		ID:         uuid.NewString(),
		RoomID:     st.room.ID,
		GuestEmail: guest,
		GuestName:  guestName,
		HostEmail:  st.room.HostEmail,
		CheckIn:    st.checkIn,
		CheckOut:   st.checkOut,
		Nights:     st.nights,
		PriceCents: st.room.PriceCents,
		TotalCents: st.total,
		Currency:   s.cfg.Stripe.Currency,
		Status:     model.StatusNone,
		Metadata:   sharedModel.Stamp(guest, now),
	}
}

// holdRoom locks the room row and rejects the range when an active booking overlaps it.
func (s *serviceImpl) holdRoom(ctx context.Context, tx *sqlx.Tx, booking model.Booking) error {
	room, err := s.roomRepo.GetForUpdateTx(ctx, tx, roomFilter(booking.RoomID))
	if err != nil {
		return fmt.Errorf("failed to lock room: %w", err)
	}

	if room.ID == constant.Empty {
		return errRoomNotFound
	}

	taken, err := s.repo.ExistTx(ctx, tx, overlapFilter(booking.RoomID, booking.CheckIn, booking.CheckOut))
	if err != nil {
		return fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	if taken {
		return errDatesTaken
	}

	return nil
}

// insertTx stores a new booking as pending along with its first event.
func (s *serviceImpl) insertTx(ctx context.Context, tx *sqlx.Tx, booking *model.Booking, reason string) error {
	if !model.CanTransition(booking.Status, model.StatusPending) {
		return failure.Conflict("booking already exists") // nolint:wrapcheck
	}

	booking.Status = model.StatusPending

	if err := s.repo.InsertTx(ctx, tx, *booking); err != nil {
		booking.Status = model.StatusNone

		return err //nolint:wrapcheck
	}

	if err := s.repo.InsertEventTx(ctx, tx, s.newEvent(ctx, booking.ID, model.StatusNone, model.StatusPending, reason)); err != nil {
		return fmt.Errorf("failed to record booking event: %w", err)
	}

	return nil
}

// transitionTx moves booking to status to with a conditional update on its current
// status, so only one of several concurrent transitions can win.
func (s *serviceImpl) transitionTx(ctx context.Context, tx *sqlx.Tx, booking *model.Booking, to model.Status, reason string, fields map[string]any) error {
	from := booking.Status
	if !model.CanTransition(from, to) {
		return failure.Conflict(fmt.Sprintf("booking cannot move from %s to %s", from, to)) // nolint:wrapcheck
	}

	update := map[string]any{
		model.FieldStatus:        to.String(),
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor(ctx),
	}
	maps.Copy(update, fields)

	affected, err := s.repo.UpdateTxAffected(ctx, tx, update, statusFilter(booking.ID, from))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if affected == 0 {
		return errStaleTransition
	}

	if err := s.repo.InsertEventTx(ctx, tx, s.newEvent(ctx, booking.ID, from, to, reason)); err != nil {
		return fmt.Errorf("failed to record booking event: %w", err)
	}

	booking.Status = to

	if due, ok := fields[model.FieldRefundDueAt].(time.Time); ok {
		booking.RefundDueAt = &due
	}

	return nil
}

// move commits a single transition and publishes it.
func (s *serviceImpl) move(ctx context.Context, booking *model.Booking, to model.Status, reason string, fields map[string]any) error {
	from := booking.Status

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.transitionTx(ctx, tx, booking, to, reason, fields)
	})
	if err != nil {
		booking.Status = from

		return err
	}

	s.events.Publish(ctx, *booking, from)

	return nil
}

func (s *serviceImpl) setBookedTx(ctx context.Context, tx *sqlx.Tx, roomID string, booked bool) error {
	fields := map[string]any{
		roomModel.FieldBooked:    booked,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor(ctx),
	}

	if err := s.roomRepo.UpdateTx(ctx, tx, fields, roomFilter(roomID)); err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}

	return nil
}

// fail releases a pending hold whose payment could not be set up.
func (s *serviceImpl) fail(ctx context.Context, booking *model.Booking, reason string) {
	if err := s.move(ctx, booking, model.StatusFailed, reason, nil); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to mark booking failed")
	}
}

// compensate moves a paid booking that could not be confirmed to refunded, then
// returns the payment.
func (s *serviceImpl) compensate(ctx context.Context, booking *model.Booking, reason string) error {
	if err := s.move(ctx, booking, model.StatusRefunded, reason, owed(*booking)); err != nil {
		return err
	}

	s.settle(ctx, booking)

	return nil
}

// owed marks the payment of booking as due for refund in the same update that
// ends the booking.
func owed(booking model.Booking) map[string]any {
	if booking.IntentID() == constant.Empty {
		return nil
	}

	return map[string]any{model.FieldRefundDueAt: timezone.Now()}
}

// settle refunds an owed payment and clears the marker. A refund that fails stays
// owed and reports false.
func (s *serviceImpl) settle(ctx context.Context, booking *model.Booking) bool {
	if booking.RefundDueAt == nil {
		return true
	}

	if err := s.refund(ctx, *booking); err != nil {
		log.Warn().Err(err).Str("booking_id", booking.ID).Msg("refund deferred")

		return false
	}

	fields := map[string]any{
		model.FieldRefundDueAt:   nil,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor(ctx),
	}

	if err := s.repo.Update(ctx, fields, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); err != nil {
		// the retry reuses the idempotency key, so it cannot refund twice
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to clear owed refund")
	}

	booking.RefundDueAt = nil

	return true
}

// refundLate refunds a payment that arrived after its booking let go of the dates.
// A failed refund is marked owed.
func (s *serviceImpl) refundLate(ctx context.Context, booking model.Booking) error {
	err := s.refund(ctx, booking)
	if err == nil {
		return nil
	}

	log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to refund late payment")

	fields := map[string]any{
		model.FieldRefundDueAt:   timezone.Now(),
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor(ctx),
	}

	if markErr := s.repo.Update(ctx, fields, shared.FilterByID(booking.ID, model.FieldID, model.TableName)); markErr != nil {
		log.Error().Err(markErr).Str("booking_id", booking.ID).Msg("failed to mark refund owed")
	}

	return err
}

func (s *serviceImpl) refund(ctx context.Context, booking model.Booking) error {
	if booking.IntentID() == constant.Empty {
		return nil
	}

	return s.gateway.Refund(ctx, booking.IntentID(), refundKeyPrefix+booking.ID) //nolint:wrapcheck
}

// release cancels the payment intent of a hold that ended unpaid. A payment that
// went through anyway is refunded.
func (s *serviceImpl) release(ctx context.Context, booking model.Booking) {
	intentID := booking.IntentID()
	if intentID == constant.Empty {
		return
	}

	if err := s.gateway.CancelIntent(ctx, intentID); err == nil {
		return
	}

	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		log.Warn().Err(err).Str("intent_id", intentID).Msg("failed to inspect payment intent of released hold")

		return
	}

	if intent.Succeeded() {
		_ = s.refundLate(ctx, booking)
	}
}

// verify checks the intent went through for exactly the expected amount.
func (s *serviceImpl) verify(ctx context.Context, intentID string, total int64) (stripe.Intent, error) {
	if intentID == constant.Empty {
		return stripe.Intent{}, errNoPaymentReference
	}

	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return intent, errPaymentUnavailable
	}

	if !intent.Succeeded() {
		return intent, errPaymentIncomplete
	}

	if intent.Amount != total {
		return intent, errAmountMismatch
	}

	return intent, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Booking{}, errInvalidBookingID
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, errBookingNotFound
	}

	return booking, nil
}

func (s *serviceImpl) byIntent(ctx context.Context, intentID string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(intentID, model.FieldPaymentIntentID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking by payment intent")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

func (s *serviceImpl) newEvent(ctx context.Context, bookingID string, from, to model.Status, reason string) model.Event {
	return model.Event{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		CreatedAt:  timezone.Now(),
		CreatedBy:  actor(ctx),
	}
}

// txError maps a failed transaction to the error returned to the caller.
func (s *serviceImpl) txError(err error, msg string) error {
	var f *failure.Failure

	switch {
	case errors.As(err, &f):
		return err
	case gRepo.IsExclusionViolation(err):
		return errDatesTaken
	case gRepo.IsUniqueViolation(err), gRepo.IsForeignKeyViolation(err):
		return failure.Conflict(msg) // nolint:wrapcheck
	default:
		log.Error().Err(err).Msg(msg)

		return fmt.Errorf("%s: %w", msg, err)
	}
}

func (s *serviceImpl) invalidateRoom(ctx context.Context, roomID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(roomModel.CacheKeyGet, roomID)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, roomModel.CacheKeyGetAll)
		shared.InvalidateCaches(c, s.cache, roomModel.CacheKeyCount)
	}()
}

func actor(ctx context.Context) string {
	if email := shared.ActorEmail(ctx); email != constant.Empty {
		return email
	}

	return constant.ContextSystem
}

// canView reports whether the caller is the booking's guest, the room's host, or an admin.
func canView(ctx context.Context, booking model.Booking) bool {
	email := shared.ActorEmail(ctx)

	return email == booking.GuestEmail || email == booking.HostEmail || shared.IsAdmin(ctx)
}

func oldestFirst(field string) gDto.QueryParams {
	return gDto.QueryParams{
		Page:    1,
		Limit:   expiryBatchSize,
		SortBy:  field,
		SortDir: sortDirAscending,
	}
}

func roomFilter(roomID string) gDto.FilterGroup {
	return shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName)
}

func statusFilter(id string, status model.Status) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status.String(), ArgName: argCurrentStatus, Table: model.TableName},
		},
	}
}

// overlapFilter matches active bookings of the room whose [check_in, check_out) meets [from, to).
func overlapFilter(roomID string, from, to time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Operator: gDto.FilterOperatorEq, Value: roomID, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorIn, Value: model.ActiveStatuses(), Table: model.TableName},
			gDto.Filter{Field: model.FieldCheckIn, Operator: gDto.FilterOperatorLess, Value: to, ArgName: argRangeEnd, Table: model.TableName},
			gDto.Filter{Field: model.FieldCheckOut, Operator: gDto.FilterOperatorGreater, Value: from, ArgName: argRangeStart, Table: model.TableName},
		},
	}
}

func confirmedFilter(roomID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Operator: gDto.FilterOperatorEq, Value: roomID, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: model.StatusConfirmed.String(), Table: model.TableName},
		},
	}
}
