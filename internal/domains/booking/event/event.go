package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"time"

	"stayvista/config"
	"stayvista/infras/kafka"
	"stayvista/infras/otel"
	"stayvista/internal/domains/booking/model"
	"stayvista/shared/constant"
	"stayvista/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Message is the payload written to the booking events topic.
type Message struct {
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	// Publish announces a committed transition of booking out of status from.
	// Delivery failures are logged and never returned.
	Publish(ctx context.Context, booking model.Booking, from model.Status)
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topics.BookingEvents,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, booking model.Booking, from model.Status) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttribute("booking.id", booking.ID)
	scope.SetAttribute("booking.status", booking.Status.String())

	msg := kafka.Message{
		Key: booking.ID,
		Value: Message{
			BookingID:  booking.ID,
			RoomID:     booking.RoomID,
			From:       from.String(),
			To:         booking.Status.String(),
			Status:     booking.Status.String(),
			OccurredAt: timezone.Now(),
		},
	}

	if err := p.client.SendMessages(ctx, p.topic, msg); err != nil {
		scope.TraceError(err)

		log.Error().
			Err(err).
			Str("booking_id", booking.ID).
			Str("from", from.String()).
			Str("to", booking.Status.String()).
			Msg("failed to publish booking event")
	}
}
