package dto

import (
	"strings"

	"stayvista/internal/domains/user/model"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	gModel "stayvista/shared/model"
	"stayvista/shared/timezone"
)

type UpsertUserRequest struct {
	Email  string `json:"email"  validate:"required,email,max=255"`
	Name   string `json:"name"   validate:"omitempty,max=255"`
	Image  string `json:"image"  validate:"omitempty,url,max=1024"`
	Status string `json:"status" validate:"omitempty,oneof=requested approved"`
}

// Normalize lower-cases the email and status so "Requested" and "requested" match.
func (u *UpsertUserRequest) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Status = strings.ToLower(strings.TrimSpace(u.Status))
}

func (u *UpsertUserRequest) ToModel() model.User {
	return model.User{
		Email:    u.Email,
		Name:     u.Name,
		Image:    u.Image,
		Role:     constant.RoleGuest,
		Status:   u.Status,
		Metadata: gModel.Stamp(u.Email, timezone.Now()),
	}
}

type UpdateStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=requested approved"`
}

func (u *UpdateStatusRequest) Normalize() {
	u.Status = strings.ToLower(strings.TrimSpace(u.Status))
}

type UpdateRoleRequest struct {
	Role   string `db:"role"   json:"role"   validate:"required,oneof=guest host admin"`
	Status string `db:"status" json:"status" validate:"omitempty,oneof=requested approved"`
}

func (u *UpdateRoleRequest) Normalize() {
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	u.Status = strings.ToLower(strings.TrimSpace(u.Status))
}

type UserResponse struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Role   string `json:"role"`
	Status string `json:"status"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.Email = model.Email
	r.Name = model.Name
	r.Image = model.Image
	r.Role = model.Role
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
