package model

const (
	EntityName = "payment"

	// CacheKeyIntent holds the client secret returned for an Idempotency-Key.
	CacheKeyIntent = "payment:intent"

	MetadataGuestEmail = "guest_email"
)
