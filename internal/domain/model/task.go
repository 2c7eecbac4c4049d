// Package model defines the core data types of the conveyor job system:
// the JobGroup/Job/Task hierarchy, the Execution run record, and the
// stage context used to pass data between tasks.
package model

import (
	"encoding/json"
	"strings"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// TaskType classifies which connector a task invokes. The tag is free-form;
// the constants below name the built-in connector kinds.
type TaskType string

const (
	// TaskTypeFetchAPIData fetches data from an HTTP API.
	TaskTypeFetchAPIData TaskType = "fetch_api_data"
	// TaskTypeCreateFile writes content to a file.
	TaskTypeCreateFile TaskType = "create_file"
	// TaskTypeCompressFile compresses a prior stage output.
	TaskTypeCompressFile TaskType = "compress_file"
	// TaskTypeUploadSFTP transfers a file over SFTP.
	TaskTypeUploadSFTP TaskType = "upload_sftp"
	// TaskTypeGeneral is the extensible category for custom or placeholder steps.
	TaskTypeGeneral TaskType = "general"
)

const (
	// DefaultMaxRetries is the total attempt count applied when a task does
	// not specify one. The first attempt counts toward the limit.
	DefaultMaxRetries = 3
	// DefaultTimeoutSeconds bounds a single attempt of a task's unit of work.
	DefaultTimeoutSeconds = 300
)

// Task is the smallest schedulable unit, wrapping one connector invocation.
type Task struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           TaskType        `json:"type"`
	ExecutionOrder int             `json:"execution_order"`
	Config         json.RawMessage `json:"config,omitempty"`
	// Requires lists stage-context keys that must have been produced by an
	// earlier task in the same job. Checked before the unit of work runs.
	Requires []string `json:"requires,omitempty"`
	// OutputKey is an optional alias under which this task's output is stored
	// in the stage context, in addition to the task id.
	OutputKey      string `json:"output_key,omitempty"`
	MaxRetries     int    `json:"max_retries"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Active         bool   `json:"active"`
}

// Normalize applies defaults for zero-valued retry and timeout settings.
func (t *Task) Normalize() {
	if t.MaxRetries <= 0 {
		t.MaxRetries = DefaultMaxRetries
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate checks the task's own fields. Hierarchy-level invariants
// (duplicate ids) are checked by the containing Job.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return apperrors.ValidationField("id", "task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return apperrors.ValidationField("name", "task name is required")
	}
	if t.Type == "" {
		return apperrors.ValidationField("type", "task type is required")
	}
	if t.MaxRetries < 0 {
		return apperrors.ValidationField("max_retries", "max retries must be >= 0")
	}
	if t.TimeoutSeconds < 0 {
		return apperrors.ValidationField("timeout_seconds", "timeout seconds must be >= 0")
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Config != nil {
		clone.Config = append(json.RawMessage(nil), t.Config...)
	}
	if t.Requires != nil {
		clone.Requires = append([]string(nil), t.Requires...)
	}
	return &clone
}
