// Package core defines the ports between the conveyor engine and its
// collaborators: persistence sinks, definition repositories, and the
// connector capability tasks are executed through.
package core

import (
	"context"

	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// This file contains repository and sink interface definitions (ports in
// hexagonal architecture). The engine depends on these interfaces, never on
// concrete implementations.

// ExecutionSink receives execution snapshots on every progress update and on
// every terminal transition. A sink failure is a persistence warning: the
// engine logs it and keeps running, it never fails the run.
type ExecutionSink interface {
	Save(ctx context.Context, execution *model.Execution) error
}

// ExecutionSinkFunc adapts a function to the ExecutionSink interface.
type ExecutionSinkFunc func(ctx context.Context, execution *model.Execution) error

// Save implements ExecutionSink.
func (f ExecutionSinkFunc) Save(ctx context.Context, execution *model.Execution) error {
	return f(ctx, execution)
}

// ExecutionListOptions filters execution listings.
type ExecutionListOptions struct {
	SubjectID string
	Status    model.ExecutionStatus
	Limit     int
	Offset    int
}

// ExecutionRepository defines the interface for persisted execution records.
// Save upserts, so progress updates and terminal transitions reuse the same
// operation.
type ExecutionRepository interface {
	ExecutionSink
	GetByID(ctx context.Context, id string) (*model.Execution, error)
	List(ctx context.Context, opts ExecutionListOptions) ([]*model.Execution, error)
	// MarkStaleRunning fails executions left in pending or running status by a
	// previous process, stamping them with the given message. Returns the
	// number of executions updated. There is no crash-recovery re-execution.
	MarkStaleRunning(ctx context.Context, message string) (int64, error)
}

// GroupRepository defines the interface for job group definition storage.
// Definitions are stored whole so a round trip reproduces ordering and
// configuration payloads exactly.
type GroupRepository interface {
	Create(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error)
	GetByID(ctx context.Context, id string) (*model.JobGroup, error)
	// GetJob finds a single job definition by id across all stored groups.
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	List(ctx context.Context, limit, offset int) ([]*model.JobGroup, error)
	Update(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SnapshotCache caches the latest execution snapshot per execution id for
// cheap status polling. Like a sink, cache failures never fail a run.
type SnapshotCache interface {
	Put(ctx context.Context, execution *model.Execution) error
	Get(ctx context.Context, executionID string) (*model.Execution, error)
}
