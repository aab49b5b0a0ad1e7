package model

import (
	"time"

	"stayvista/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldTitle         = "title"
	FieldLocation      = "location"
	FieldCategory      = "category"
	FieldImage         = "image"
	FieldPriceCents    = "price_cents"
	FieldAvailableFrom = "available_from"
	FieldAvailableTo   = "available_to"
	FieldHostEmail     = "host_email"
	FieldBooked        = "booked"
)

const (
	CacheKeyGet    = "room:get"
	CacheKeyGetAll = "room:gets"
	CacheKeyCount  = "room:count"
)

type Room struct {
	ID            string    `db:"id"             json:"id"`
	Title         string    `db:"title"          json:"title"`
	Description   string    `db:"description"    json:"description"`
	Location      string    `db:"location"       json:"location"`
	Category      string    `db:"category"       json:"category"`
	Image         string    `db:"image"          json:"image"`
	PriceCents    int64     `db:"price_cents"    json:"price_cents"`
	Guests        int       `db:"guests"         json:"guests"`
	Bedrooms      int       `db:"bedrooms"       json:"bedrooms"`
	Bathrooms     int       `db:"bathrooms"      json:"bathrooms"`
	AvailableFrom time.Time `db:"available_from" json:"available_from"`
	AvailableTo   time.Time `db:"available_to"   json:"available_to"`
	HostEmail     string    `db:"host_email"     json:"host_email"`
	HostName      string    `db:"host_name"      json:"host_name"`
	HostImage     string    `db:"host_image"     json:"host_image"`
	Booked        bool      `db:"booked"         json:"booked"`
	model.Metadata
}

// IsHostedBy reports whether email listed the room.
func (r Room) IsHostedBy(email string) bool {
	return email != "" && r.HostEmail == email
}
