package dto

import (
	"time"

	"stayvista/internal/domains/booking/model"
	"stayvista/internal/domains/booking/pricing"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
)

type ReserveRequest struct {
	RoomID    string `json:"room_id"    validate:"required,uuid"`
	From      string `json:"from"       validate:"required,calendardate"`
	To        string `json:"to"         validate:"required,calendardate"`
	GuestName string `json:"guest_name" validate:"omitempty,max=255"`
}

type ConfirmRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,max=255"`
}

type GuestRequest struct {
	Name  string `json:"name"  validate:"omitempty,max=255"`
	Email string `json:"email" validate:"omitempty,email"`
	Image string `json:"image" validate:"omitempty,max=1024"`
}

// RecordRequest is the payment summary posted after a client-side checkout.
type RecordRequest struct {
	RoomID        string       `json:"room_id"        validate:"required,uuid"`
	From          string       `json:"from"           validate:"required,calendardate"`
	To            string       `json:"to"             validate:"required,calendardate"`
	TransactionID string       `json:"transaction_id" validate:"required,max=255"`
	Guest         GuestRequest `json:"guest"`
}

type QuoteResponse struct {
	RoomID     string  `json:"room_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Nights     int64   `json:"nights"`
	Price      float64 `json:"price"`
	PriceCents int64   `json:"price_cents"`
	Total      float64 `json:"total"`
	TotalCents int64   `json:"total_cents"`
	Currency   string  `json:"currency"`
}

type BookingResponse struct {
	ID              string  `json:"id"`
	RoomID          string  `json:"room_id"`
	GuestEmail      string  `json:"guest_email"`
	GuestName       string  `json:"guest_name"`
	HostEmail       string  `json:"host_email"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Nights          int64   `json:"nights"`
	Price           float64 `json:"price"`
	Total           float64 `json:"total"`
	TotalCents      int64   `json:"total_cents"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	PaymentIntentID string  `json:"payment_intent_id,omitempty"`
	TransactionID   string  `json:"transaction_id,omitempty"`
	HoldExpiresAt   string  `json:"hold_expires_at,omitempty"`
	RefundPending   bool    `json:"refund_pending,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.GuestEmail = model.GuestEmail
	r.GuestName = model.GuestName
	r.HostEmail = model.HostEmail
	r.From = model.CheckIn.Format(constant.DayFormat)
	r.To = model.CheckOut.Format(constant.DayFormat)
	r.Nights = model.Nights
	r.Price = pricing.FromMinorUnits(model.PriceCents)
	r.Total = pricing.FromMinorUnits(model.TotalCents)
	r.TotalCents = model.TotalCents
	r.Currency = model.Currency
	r.Status = model.Status.String()
	r.PaymentIntentID = model.IntentID()
	r.RefundPending = model.RefundDueAt != nil

	if model.TransactionID != nil {
		r.TransactionID = *model.TransactionID
	}

	if model.HoldExpiresAt != nil {
		r.HoldExpiresAt = model.HoldExpiresAt.Format(time.RFC3339)
	}

	r.Metadata.FromModel(model.Metadata)
}

type ReservationResponse struct {
	Booking      BookingResponse `json:"booking"`
	ClientSecret string          `json:"clientSecret"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}
