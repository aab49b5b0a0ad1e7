package permissions_test

import (
	"net/http"
	"testing"

	"stayvista/permissions"
	"stayvista/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestPermissionData_FindPermissions(t *testing.T) {
	data := permissions.Get()
	assert.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantSkip  bool
		wantRoles []string
	}{
		{name: "room listing is public", path: "/rooms", method: http.MethodGet, wantSkip: true},
		{name: "room creation needs a host", path: "/rooms", method: http.MethodPost, wantRoles: []string{constant.RoleHost, constant.RoleAdmin}},
		{name: "room detail is public", path: "/room/{id}", method: http.MethodGet, wantSkip: true},
		{name: "room deletion needs a host", path: "/room/{id}", method: http.MethodDelete, wantRoles: []string{constant.RoleHost, constant.RoleAdmin}},
		{name: "role change is admin only", path: "/update-role/{email}", method: http.MethodPatch, wantRoles: []string{constant.RoleAdmin}},
		{name: "payment intent needs any session", path: "/create-payment-intent", method: http.MethodPost, wantRoles: []string{}},
		{name: "login is public", path: "/jwt", method: http.MethodPost, wantSkip: true},
		{name: "unknown route", path: "/nope", method: http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)

			if tt.wantRoles != nil {
				assert.ElementsMatch(t, tt.wantRoles, permission.Permissions)
			}
		})
	}
}

func TestPermission_Allows(t *testing.T) {
	tests := []struct {
		name       string
		permission permissions.Permission
		role       string
		want       bool
	}{
		{"open to any session", permissions.Permission{Permissions: []string{}}, constant.RoleGuest, true},
		{"listed role", permissions.Permission{Permissions: []string{constant.RoleHost, constant.RoleAdmin}}, constant.RoleHost, true},
		{"missing role", permissions.Permission{Permissions: []string{constant.RoleAdmin}}, constant.RoleHost, false},
		{"empty role", permissions.Permission{Permissions: []string{constant.RoleAdmin}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.permission.Allows(tt.role))
		})
	}
}

func TestPermissionData_FindPermissionsWithoutIndex(t *testing.T) {
	data := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/audit-logs", Method: http.MethodGet, Permissions: []string{constant.RoleAdmin}},
		},
	}

	assert.Equal(t, []string{constant.RoleAdmin}, data.FindPermissions("/audit-logs", http.MethodGet).Permissions)
	assert.Empty(t, data.FindPermissions("/audit-logs", http.MethodPost).Path)
}
