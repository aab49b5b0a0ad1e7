package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EntityName = "audit"

	FieldCreatedAt    = "created_at"
	FieldActor        = "actor"
	FieldResourceType = "resource_type"
	FieldResourceID   = "resource_id"
)

const (
	ActionUpsertUser       = "user.upsert"
	ActionUpdateUserStatus = "user.update_status"
	ActionUpdateUserRole   = "user.update_role"
	ActionCreateRoom       = "room.create"
	ActionDeleteRoom       = "room.delete"
	ActionUpdateRoomStatus = "room.update_status"
	ActionCancelBooking    = "booking.cancel"
)

const (
	ResourceUser    = "user"
	ResourceRoom    = "room"
	ResourceBooking = "booking"
)

// Record is one entry of the audit trail.
type Record struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Action       string             `bson:"action"`
	ResourceType string             `bson:"resource_type"`
	ResourceID   string             `bson:"resource_id"`
	Actor        string             `bson:"actor"`
	ClientIP     string             `bson:"client_ip"`
	Before       map[string]any     `bson:"before,omitempty"`
	After        map[string]any     `bson:"after,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}
