package model

import (
	"math"
	"time"
)

// ExecutionStatus represents the lifecycle state of one run.
// Pending and Running are the only non-terminal states.
type ExecutionStatus string

const (
	// ExecutionStatusPending indicates the execution record exists but the
	// run has not started.
	ExecutionStatusPending ExecutionStatus = "pending"
	// ExecutionStatusRunning indicates the run is in progress.
	ExecutionStatusRunning ExecutionStatus = "running"
	// ExecutionStatusCompleted indicates every child succeeded.
	ExecutionStatusCompleted ExecutionStatus = "completed"
	// ExecutionStatusFailed indicates a child failed and the run stopped.
	ExecutionStatusFailed ExecutionStatus = "failed"
	// ExecutionStatusCancelled indicates cooperative cancellation was
	// observed between children.
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Valid returns true if the ExecutionStatus is valid.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusRunning,
		ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}
	return false
}

// Terminal returns true once the status can no longer change.
func (s ExecutionStatus) Terminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}
	return false
}

// SubjectKind identifies what an Execution tracks: a single job or a group
// aggregate.
type SubjectKind string

const (
	// SubjectKindJob marks an execution of a single job; its counters count tasks.
	SubjectKindJob SubjectKind = "job"
	// SubjectKindGroup marks an aggregate execution of a job group; its
	// counters count child jobs.
	SubjectKindGroup SubjectKind = "group"
)

// Execution is the mutable run record for one Job or JobGroup run. It is
// owned exclusively by the orchestrator driving it and becomes immutable once
// a terminal status is set; everything handed outward is a Snapshot copy.
type Execution struct {
	ID          string      `json:"id"`
	SubjectKind SubjectKind `json:"subject_kind"`
	SubjectID   string      `json:"subject_id"`
	SubjectName string      `json:"subject_name"`
	// ParentID links a job execution to the group execution that spawned it.
	ParentID           *string         `json:"parent_id,omitempty"`
	Status             ExecutionStatus `json:"status"`
	CurrentTaskIndex   int             `json:"current_task_index"`
	TotalTasks         int             `json:"total_tasks"`
	ProgressPercentage int             `json:"progress_percentage"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	DurationMs         int64           `json:"duration_ms"`
	ErrorMessage       *string         `json:"error_message,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// RecomputeProgress sets ProgressPercentage to
// round(CurrentTaskIndex/TotalTasks*100). With zero total tasks the progress
// is 0 unless the run completed, in which case it is 100. A completed run is
// always forced to 100 regardless of rounding.
func (e *Execution) RecomputeProgress() {
	if e.Status == ExecutionStatusCompleted {
		e.ProgressPercentage = 100
		return
	}
	if e.TotalTasks == 0 {
		e.ProgressPercentage = 0
		return
	}
	e.ProgressPercentage = int(math.Round(float64(e.CurrentTaskIndex) / float64(e.TotalTasks) * 100))
}

// Terminal returns true once the execution reached a terminal status.
func (e *Execution) Terminal() bool {
	return e.Status.Terminal()
}

// Snapshot returns a deep copy safe to hand to sinks and callers while the
// orchestrator keeps mutating the original.
func (e *Execution) Snapshot() *Execution {
	if e == nil {
		return nil
	}
	snap := *e
	if e.ParentID != nil {
		v := *e.ParentID
		snap.ParentID = &v
	}
	if e.StartedAt != nil {
		v := *e.StartedAt
		snap.StartedAt = &v
	}
	if e.CompletedAt != nil {
		v := *e.CompletedAt
		snap.CompletedAt = &v
	}
	if e.ErrorMessage != nil {
		v := *e.ErrorMessage
		snap.ErrorMessage = &v
	}
	return &snap
}
