package handler

import (
	"net/http"
	"sync"

	"stayvista/config"
	"stayvista/di"
	"stayvista/shared/logger"
)

// server is built once per warm serverless instance.
var server = sync.OnceValue(func() http.Handler {
	logger.InitLogger()
	logger.SetLogLevel(config.Get())

	return di.InitializeService()
})

// Handler is the serverless entrypoint. Migrations are not run here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	server().ServeHTTP(w, r)
}
