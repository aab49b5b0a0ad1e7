package audit

import (
	"net/http"

	"stayvista/infras/otel"
	"stayvista/internal/domains/audit/model/dto"
	"stayvista/internal/domains/audit/service"
	"stayvista/shared/constant"
	gDto "stayvista/shared/dto"
	"stayvista/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Audit
	otel    otel.Otel
}

func New(service service.Audit, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/audit-logs", handler.GetAuditLogs)
}

// GetAuditLogs lists recorded admin and host actions, newest first.
// @Summary Get audit logs
// @Tags Audit
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param actor query string false "Filter by actor email"
// @Param resource_type query string false "Filter by resource type"
// @Param resource_id query string false "Filter by resource ID"
// @Success 200 {object} response.Data[dto.GetRecordsResponse] "Audit records"
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /audit-logs [get]
// @Security CookieAuth
func (handler *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuditLogs")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	filter := dto.Filter{
		Actor:        query.Get("actor"),
		ResourceType: query.Get("resource_type"),
		ResourceID:   query.Get("resource_id"),
	}

	records, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get audit logs")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, records)
}
