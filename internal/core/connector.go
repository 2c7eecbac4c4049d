package core

import (
	"context"
	"encoding/json"

	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// WorkRequest is the input handed to a connector for one task attempt.
type WorkRequest struct {
	// Task is the task being executed (read-only to the connector).
	Task *model.Task
	// Config is the task's opaque configuration payload. The engine validates
	// only that it is present when the connector requires one.
	Config json.RawMessage
	// Stage exposes the outputs of prior tasks in the same job.
	Stage *model.StageContext
}

// WorkResult is the output of one successful connector invocation. Output is
// stored in the stage context under the task id and its optional output key.
type WorkResult struct {
	Output []byte
	// Detail is an optional human-readable note about what was done.
	Detail string
}

// Connector is the external capability a task wraps: a function from a typed
// configuration payload to a success/failure result. Connectors are supplied
// by the hosting application; the engine never constructs HTTP clients, file
// handles, or SSH sessions itself.
//
// A connector must honour ctx cancellation and deadlines itself; the engine
// derives a per-attempt deadline from the task's timeout but does not
// forcibly abort a hung unit of work.
type Connector interface {
	// Kind returns the task category this connector serves.
	Kind() model.TaskType
	// RequiresConfig reports whether tasks of this kind must carry a
	// configuration payload.
	RequiresConfig() bool
	Run(ctx context.Context, req WorkRequest) (*WorkResult, error)
}

// ConnectorResolver resolves a task category to the connector that serves it.
// A task whose category resolves to no connector is treated as a trivial
// success (placeholder and manual steps).
type ConnectorResolver interface {
	Resolve(kind model.TaskType) (Connector, bool)
}
