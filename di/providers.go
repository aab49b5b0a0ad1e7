package di

import (
	authService "stayvista/internal/domains/auth/service"
	userService "stayvista/internal/domains/user/service"
)

// roleResolver lets the auth gate read roles through the cached user service.
func roleResolver(users userService.User) authService.RoleResolver {
	return users
}
