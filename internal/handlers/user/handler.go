package user

import (
	"net/http"

	"stayvista/infras/otel"
	"stayvista/internal/domains/user/model"
	"stayvista/internal/domains/user/model/dto"
	"stayvista/internal/domains/user/service"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/validator"
	"stayvista/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Put("/user", handler.UpsertUser)
	router.Get("/users", handler.GetUsers)
	router.Get("/user/{email}", handler.GetUser)
	router.Patch("/user/{email}", handler.UpdateStatus)
	router.Patch("/update-role/{email}", handler.UpdateRole)
}

// UpsertUser saves a user on login.
// @Summary Save a user on login
// @Description Insert the user on first login. An existing user is returned unchanged unless the body requests host status.
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.UpsertUserRequest true "Upsert User Request"
// @Success 200 {object} response.Data[dto.UserResponse] "Saved user"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /user [put]
func (handler *Handler) UpsertUser(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertUser")
	defer scope.End()

	req := dto.UpsertUserRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	user, err := handler.service.Upsert(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to save user")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("User saved successfully")

	response.WithJSON(writer, http.StatusOK, user)
}

// GetUsers retrieves all users.
// @Summary Get all users
// @Description Retrieve all users with optional filtering and pagination.
// @Tags User
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by host request status"
// @Success 200 {object} response.Data[dto.GetUsersResponse] "List of users"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /users [get]
// @Security CookieAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUsers")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
	}

	for _, field := range []string{model.FieldRole, model.FieldStatus} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	users, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get users")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Users retrieved successfully")

	response.WithJSON(w, http.StatusOK, users)
}

// GetUser retrieves a user by email.
// @Summary Get a user by email
// @Tags User
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} response.Data[dto.UserResponse] "User details"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /user/{email} [get]
// @Security CookieAuth
func (handler *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUser")
	defer scope.End()

	email := chi.URLParam(r, constant.RequestParamEmail)

	user, err := handler.service.Get(ctx, email)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", email).Msg("failed to get user")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateStatus updates the host request status of a user.
// @Summary Update host request status
// @Tags User
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param request body dto.UpdateStatusRequest true "Update Status Request"
// @Success 200 {object} response.Message "User updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /user/{email} [patch]
// @Security CookieAuth
func (handler *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateStatus")
	defer scope.End()

	email := chi.URLParam(r, constant.RequestParamEmail)

	req := dto.UpdateStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateStatus(ctx, email, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", email).Msg("failed to update user status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User status updated")

	response.WithMessage(w, http.StatusOK, "User updated successfully")
}

// UpdateRole changes the role of a user.
// @Summary Update user role
// @Tags User
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param request body dto.UpdateRoleRequest true "Update Role Request"
// @Success 200 {object} response.Message "User role updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /update-role/{email} [patch]
// @Security CookieAuth
func (handler *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRole")
	defer scope.End()

	email := chi.URLParam(r, constant.RequestParamEmail)

	req := dto.UpdateRoleRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateRole(ctx, email, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", email).Msg("failed to update user role")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User role updated")

	response.WithMessage(w, http.StatusOK, "User role updated successfully")
}
