package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"stayvista/config"
	_ "stayvista/docs" // swagger docs
	"stayvista/shared/constant"
	"stayvista/transport/http/middleware"
	"stayvista/transport/http/response"
	"stayvista/transport/http/router"
	"stayvista/transport/scheduler"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type HTTP struct {
	Config    *config.Config
	Router    router.Router
	App       middleware.AppMiddleware
	Scheduler *scheduler.Scheduler

	state  atomic.Int32
	once   sync.Once
	mux    *chi.Mux
	server *http.Server
	done   chan struct{}
}

func New(cfg *config.Config, r router.Router, app middleware.AppMiddleware, sched *scheduler.Scheduler) *HTTP {
	return &HTTP{
		Config:    cfg,
		Router:    r,
		App:       app,
		Scheduler: sched,
		done:      make(chan struct{}),
	}
}

// Serve blocks until the server has shut down after SIGTERM or SIGINT.
func (h *HTTP) Serve() {
	h.setupRoutes()
	h.setState(ServerStateReady)

	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	h.Scheduler.Start(context.Background())
	h.setupGracefulShutdown()

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	<-h.done
}

// ServeHTTP serves a single request without the listener, for serverless entrypoints.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setupRoutes()
	h.setState(ServerStateReady)

	h.mux.ServeHTTP(w, r)
}

// State reports the shutdown phase the server is in.
func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) setState(state ServerState) {
	h.state.Store(int32(state))
}

func (h *HTTP) setupRoutes() {
	h.once.Do(func() {
		h.mux = chi.NewRouter()

		h.mux.Use(chiMiddleware.RequestID)
		h.mux.Use(chiMiddleware.Recoverer)

		if corsCfg := h.Config.App.CORS; corsCfg.Enable {
			h.mux.Use(cors.Handler(cors.Options{
				AllowedOrigins:   corsCfg.AllowedOrigins,
				AllowedMethods:   corsCfg.AllowedMethods,
				AllowedHeaders:   corsCfg.AllowedHeaders,
				ExposedHeaders:   []string{constant.RequestHeaderRequestID},
				AllowCredentials: corsCfg.AllowCredentials,
				MaxAge:           corsCfg.MaxAgeSeconds,
			}))
		}

		h.mux.Use(h.App.Tracing)
		h.mux.Use(h.App.RateLimit())

		h.mux.Get("/", h.greeting)
		h.mux.Get("/health", h.health)
		h.mux.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

		h.Router.SetupRoutes(h.mux)
	})
}

func (h *HTTP) greeting(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, h.Config.App.Name+" server is running")
}

func (h *HTTP) health(w http.ResponseWriter, _ *http.Request) {
	switch h.State() {
	case ServerStateReady:
		response.WithMessage(w, http.StatusOK, "OK")
	case ServerStateInGracePeriod, ServerStateInCleanupPeriod:
		response.WithPreparingShutdown(w)
	default:
		response.WithUnhealthy(w)
	}
}

func (h *HTTP) setupGracefulShutdown() {
	serverStateCh := make(chan os.Signal, 1)

	signal.Notify(serverStateCh, os.Interrupt, syscall.SIGTERM)

	go h.respondToSigterm(serverStateCh)
}

func (h *HTTP) respondToSigterm(done chan os.Signal) {
	<-done

	defer close(h.done)
	defer h.shutdown()

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		return
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Msg("Received SIGTERM.")
	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

	h.setState(ServerStateInGracePeriod)

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.setState(ServerStateInCleanupPeriod)

	time.Sleep(time.Duration(shutdownConfig.CleanupPeriodSeconds) * time.Second)
}

func (h *HTTP) shutdown() {
	h.Scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}
