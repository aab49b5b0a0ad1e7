package model

import (
	"time"

	"stayvista/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldRoomID          = "room_id"
	FieldGuestEmail      = "guest_email"
	FieldHostEmail       = "host_email"
	FieldCheckIn         = "check_in"
	FieldCheckOut        = "check_out"
	FieldStatus          = "status"
	FieldPaymentIntentID = "payment_intent_id"
	FieldTransactionID   = "transaction_id"
	FieldHoldExpiresAt   = "hold_expires_at"
	FieldRefundDueAt     = "refund_due_at"
)

const (
	EventTableName  = "booking_events"
	EventEntityName = "booking_event"
)

type Booking struct {
	ID              string     `db:"id"`
	RoomID          string     `db:"room_id"`
	GuestEmail      string     `db:"guest_email"`
	GuestName       string     `db:"guest_name"`
	HostEmail       string     `db:"host_email"`
	CheckIn         time.Time  `db:"check_in"`
	CheckOut        time.Time  `db:"check_out"`
	Nights          int64      `db:"nights"`
	PriceCents      int64      `db:"price_cents"`
	TotalCents      int64      `db:"total_cents"`
	Currency        string     `db:"currency"`
	Status          Status     `db:"status"`
	PaymentIntentID *string    `db:"payment_intent_id"`
	TransactionID   *string    `db:"transaction_id"`
	HoldExpiresAt   *time.Time `db:"hold_expires_at"`
	// RefundDueAt is set while a refund owed to the guest has not gone through.
	RefundDueAt *time.Time `db:"refund_due_at"`
	model.Metadata
}

// IntentID returns the payment intent reference, empty when none was stored.
func (b Booking) IntentID() string {
	if b.PaymentIntentID == nil {
		return ""
	}

	return *b.PaymentIntentID
}

// Event is one state transition of a booking.
type Event struct {
	ID         string    `db:"id"`
	BookingID  string    `db:"booking_id"`
	FromStatus Status    `db:"from_status"`
	ToStatus   Status    `db:"to_status"`
	Reason     string    `db:"reason"`
	CreatedAt  time.Time `db:"created_at"`
	CreatedBy  string    `db:"created_by"`
}
