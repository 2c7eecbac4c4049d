package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/conveyorhq/conveyor/config"
	httpx "github.com/conveyorhq/conveyor/internal/http"
)

// NewHTTPServer builds the HTTP server with the router and middleware chain.
// Order: Recover -> Logging -> Router.
func NewHTTPServer(cfg *config.AppConfig, services ServiceContainer, logger *slog.Logger) *http.Server {
	router := httpx.NewRouter(httpx.RouterServices{
		Groups:     services.Groups,
		Executions: services.Executions,
		Logger:     logger,
	})

	handler := httpx.Logging(logger)(router)
	handler = httpx.Recover(logger)(handler)

	addr := cfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
}
