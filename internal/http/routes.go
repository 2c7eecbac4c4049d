package httpx

import (
	"log/slog"
	"net/http"

	"github.com/conveyorhq/conveyor/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Groups     *service.GroupService
	Executions *service.ExecutionService
	Logger     *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	groupHandlers := &GroupHandlers{Svc: services.Groups}
	executionHandlers := &ExecutionHandlers{Svc: services.Executions}

	registerGroupRoutes(mux, groupHandlers)
	registerExecutionRoutes(mux, executionHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}

func registerGroupRoutes(mux *http.ServeMux, h *GroupHandlers) {
	mux.HandleFunc("POST /api/groups", h.Create)
	mux.HandleFunc("GET /api/groups", h.List)
	mux.HandleFunc("GET /api/groups/{id}", h.Get)
	mux.HandleFunc("PUT /api/groups/{id}", h.Update)
	mux.HandleFunc("DELETE /api/groups/{id}", h.Delete)
}

func registerExecutionRoutes(mux *http.ServeMux, h *ExecutionHandlers) {
	mux.HandleFunc("POST /api/groups/{id}/executions", h.SubmitGroup)
	mux.HandleFunc("POST /api/jobs/{id}/executions", h.SubmitJob)
	mux.HandleFunc("GET /api/executions", h.List)
	mux.HandleFunc("GET /api/executions/{id}", h.Status)
	mux.HandleFunc("POST /api/executions/{id}/cancel", h.Cancel)
}
