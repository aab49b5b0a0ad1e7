package model

import "stayvista/shared/model"

const (
	TableName  = "users"
	EntityName = "user"

	FieldEmail  = "email"
	FieldName   = "name"
	FieldImage  = "image"
	FieldRole   = "role"
	FieldStatus = "status"
)

const (
	CacheKeyGet    = "user:get"
	CacheKeyGetAll = "user:gets"
	CacheKeyCount  = "user:count"
	CacheKeyRole   = "user:role"
)

// User is keyed by email; the row is created on first login.
type User struct {
	Email  string `db:"email"  json:"email"`
	Name   string `db:"name"   json:"name"`
	Image  string `db:"image"  json:"image"`
	Role   string `db:"role"   json:"role"`
	Status string `db:"status" json:"status"`
	model.Metadata
}
