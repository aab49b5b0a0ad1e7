package room

import (
	"net/http"
	"strings"

	"stayvista/infras/otel"
	"stayvista/internal/domains/room/model/dto"
	"stayvista/internal/domains/room/service"
	"stayvista/shared"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/shared/failure"
	"stayvista/shared/validator"
	"stayvista/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/rooms", handler.GetRooms)
	router.Post("/rooms", handler.CreateRoom)
	router.Get("/room/{id}", handler.GetRoomByID)
	router.Delete("/room/{id}", handler.DeleteRoom)
	router.Get("/my-listings/{email}", handler.GetListings)
	router.Patch("/update-status/{id}", handler.UpdateStatus)
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Description Create a room listing from a JSON body, or from a multipart form carrying an optional image file.
// @Tags Room
// @Accept json,mpfd
// @Produce json
// @Param request body dto.CreateRoomRequest false "Create Room Request"
// @Param image formData file false "Room image"
// @Success 201 {object} response.Data[dto.RoomResponse] "Created room"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /rooms [post]
// @Security CookieAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if strings.HasPrefix(request.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeMultipartFormData) {
		if err := request.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to parse multipart form")
			response.WithError(writer, failure.BadRequest(err))

			return
		}

		if err := formRequest(request, &req); err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		file, fileHeader, err := request.FormFile(constant.FormFile)
		if err == nil {
			req.ImageHeader = fileHeader
			req.ImageFile = file

			defer file.Close()
		}

		if err := validator.ValidateStruct(&req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to validate request")

			response.WithError(writer, err)

			return
		}
	} else if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	room, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Room created successfully by " + shared.ActorEmail(ctx))

	response.WithJSON(writer, http.StatusCreated, room)
}

// formRequest copies the multipart fields into req. Numbers that do not parse are a 400.
func formRequest(request *http.Request, req *dto.CreateRoomRequest) error {
	req.Title = request.FormValue("title")
	req.Description = request.FormValue("description")
	req.Location = request.FormValue("location")
	req.Category = request.FormValue("category")
	req.Image = request.FormValue("image_url")
	req.From = request.FormValue("from")
	req.To = request.FormValue("to")
	req.Host.Name = request.FormValue("host_name")
	req.Host.Image = request.FormValue("host_image")

	if value := request.FormValue("price"); value != constant.Empty {
		price, err := shared.ConvertStringToFloat(value)
		if err != nil {
			return failure.BadRequestFromString("price must be a number") // nolint:wrapcheck
		}

		req.Price = price
	}

	counts := map[string]*int{
		"guests":    &req.Guests,
		"bedrooms":  &req.Bedrooms,
		"bathrooms": &req.Bathrooms,
	}

	for field, target := range counts {
		value := request.FormValue(field)
		if value == constant.Empty {
			continue
		}

		n, err := shared.ConvertStringToInt(value)
		if err != nil {
			return failure.BadRequestFromString(field + " must be a whole number") // nolint:wrapcheck
		}

		*target = n
	}

	return nil
}

// GetRooms lists rooms, optionally narrowed to one category.
// @Summary Get all rooms
// @Description Retrieve rooms with pagination. An empty category or the literal "null" lists every room.
// @Tags Room
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 500 {object} response.Error
// @Router /rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	rooms, err := handler.service.GetAll(ctx, queryParams, r.URL.Query().Get(constant.RequestParamCategory))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /room/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// GetListings lists the rooms hosted by email.
// @Summary Get a host's listings
// @Tags Room
// @Produce json
// @Param email path string true "Host email"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "Host rooms"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /my-listings/{email} [get]
// @Security CookieAuth
func (handler *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetListings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	email := strings.ToLower(chi.URLParam(r, constant.RequestParamEmail))

	rooms, err := handler.service.GetByHost(ctx, queryParams, email)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", email).Msg("failed to get host listings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rooms)
}

// UpdateStatus sets the booked flag of a room.
// @Summary Update room booked status
// @Tags Room
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body dto.UpdateStatusRequest true "Update Status Request"
// @Success 200 {object} response.Message "Room status updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /update-status/{id} [patch]
// @Security CookieAuth
func (handler *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.UpdateStatus(ctx, id, *req.Status); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room status updated by " + shared.ActorEmail(ctx))

	response.WithMessage(w, http.StatusOK, "Room status updated successfully")
}

// DeleteRoom deletes a room by its ID.
// @Summary Delete a room by ID
// @Tags Room
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /room/{id} [delete]
// @Security CookieAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room deleted successfully by " + shared.ActorEmail(ctx))

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}
