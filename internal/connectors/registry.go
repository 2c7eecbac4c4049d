// Package connectors provides the built-in connector capabilities tasks are
// executed through (API fetch, file write, compression, SFTP transfer) and
// the registry that resolves a task category to its connector.
package connectors

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// Registry maps task categories to connectors. It is safe for concurrent use:
// hosting applications may register custom connectors while executions are
// resolving built-in ones.
type Registry struct {
	mu         sync.RWMutex
	connectors map[model.TaskType]core.Connector
}

var _ core.ConnectorResolver = (*Registry)(nil)

// NewRegistry returns an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[model.TaskType]core.Connector)}
}

// Register adds a connector for its task category. Registering a second
// connector for the same category fails.
func (r *Registry) Register(connector core.Connector) error {
	if connector == nil {
		return fmt.Errorf("connector is required")
	}
	kind := connector.Kind()
	if kind == "" {
		return fmt.Errorf("connector kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[kind]; exists {
		return fmt.Errorf("connector already registered for kind %s", kind)
	}
	r.connectors[kind] = connector
	return nil
}

// Resolve implements core.ConnectorResolver.
func (r *Registry) Resolve(kind model.TaskType) (core.Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connector, ok := r.connectors[kind]
	return connector, ok
}

// Kinds returns the registered task categories.
func (r *Registry) Kinds() []model.TaskType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.TaskType, 0, len(r.connectors))
	for kind := range r.connectors {
		out = append(out, kind)
	}
	return out
}

// BuiltinOptions configures the built-in connector set.
type BuiltinOptions struct {
	HTTPClient *http.Client // Optional: client for the fetch connector
	Logger     *slog.Logger // Optional: structured logger
}

// NewBuiltinRegistry returns a registry with the built-in connectors
// registered: fetch_api_data, create_file, compress_file, upload_sftp, and
// general.
func NewBuiltinRegistry(opts BuiltinOptions) (*Registry, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	builtins := []core.Connector{
		NewFetchConnector(hc),
		NewCreateFileConnector(),
		NewCompressConnector(),
		NewUploadSFTPConnector(logger),
		NewGeneralConnector(),
	}
	for _, connector := range builtins {
		if err := registry.Register(connector); err != nil {
			return nil, fmt.Errorf("register builtin connector: %w", err)
		}
	}
	return registry, nil
}
