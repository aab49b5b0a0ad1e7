package auth

import (
	"net/http"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/internal/domains/auth/model/dto"
	"stayvista/internal/domains/auth/service"
	"stayvista/shared/constant"
	"stayvista/shared/validator"
	"stayvista/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auth
	cfg     *config.Config
	otel    otel.Otel
}

func New(service service.Auth, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service: service,
		cfg:     cfg,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Post("/jwt", handler.IssueToken)
	r.Get("/logout", handler.Logout)
}

// IssueToken signs a session token for the given email and sets it as a cookie.
// @Summary Issue a session token
// @Description Sign a session token for the user and store it in an httpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.IssueTokenRequest true "Issue Token Request"
// @Success 200 {object} response.Data[dto.TokenResponse] "Session issued"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /jwt [post]
func (handler *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".IssueToken")
	defer scope.End()

	req := dto.IssueTokenRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.IssueToken(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to issue token")

		response.WithError(w, err)

		return
	}

	cookie := handler.cookie(res.Token)
	cookie.Expires = res.ExpiresAt

	http.SetCookie(w, cookie)

	scope.AddEvent("Token issued")

	response.WithJSON(w, http.StatusOK, res)
}

// Logout clears the session cookie.
// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Message "Logged out"
// @Router /logout [get]
func (handler *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	_, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Logout")
	defer scope.End()

	cookie := handler.cookie(constant.Empty)
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)

	response.WithMessage(w, http.StatusOK, "Logged out successfully")
}

func (handler *Handler) cookie(value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     handler.cfg.JWT.Cookie.Name,
		Value:    value,
		Path:     "/",
		Domain:   handler.cfg.JWT.Cookie.Domain,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	if handler.cfg.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}

	return cookie
}
