package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// Job is an ordered collection of tasks; one run of a Job produces one
// Execution record. The task collection is a single owned slice exposed only
// through copying accessors.
type Job struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	ExecutionOrder int    `json:"execution_order"`
	GroupID        string `json:"group_id,omitempty"`
	Active         bool   `json:"active"`

	tasks []*Task
}

// jobJSON mirrors Job for serialization, exposing the owned task slice.
type jobJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	ExecutionOrder int     `json:"execution_order"`
	GroupID        string  `json:"group_id,omitempty"`
	Active         bool    `json:"active"`
	Tasks          []*Task `json:"tasks"`
}

// MarshalJSON implements json.Marshaler, preserving task insertion order.
func (j *Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobJSON{
		ID:             j.ID,
		Name:           j.Name,
		Type:           j.Type,
		ExecutionOrder: j.ExecutionOrder,
		GroupID:        j.GroupID,
		Active:         j.Active,
		Tasks:          j.tasks,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown fields are rejected so
// strict request decoding stays strict across this custom unmarshaler.
func (j *Job) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw jobJSON
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	j.ID = raw.ID
	j.Name = raw.Name
	j.Type = raw.Type
	j.ExecutionOrder = raw.ExecutionOrder
	j.GroupID = raw.GroupID
	j.Active = raw.Active
	j.tasks = raw.Tasks
	return nil
}

// AddTask appends a task to the job. It fails with a DuplicateID error if a
// task with the same id already exists.
func (j *Job) AddTask(task *Task) error {
	if task == nil {
		return apperrors.Validation("task is required")
	}
	for _, existing := range j.tasks {
		if existing.ID == task.ID {
			return apperrors.DuplicateID("job", task.ID)
		}
	}
	j.tasks = append(j.tasks, task)
	return nil
}

// RemoveTask removes the task with the given id. It returns false if no task
// has that id.
func (j *Job) RemoveTask(id string) bool {
	for i, task := range j.tasks {
		if task.ID == id {
			j.tasks = append(j.tasks[:i], j.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Tasks returns a copy of the task collection in insertion order.
func (j *Job) Tasks() []*Task {
	out := make([]*Task, len(j.tasks))
	copy(out, j.tasks)
	return out
}

// ActiveTasks returns the active tasks in ascending execution order. Ties are
// broken by insertion order.
func (j *Job) ActiveTasks() []*Task {
	out := make([]*Task, 0, len(j.tasks))
	for _, task := range j.tasks {
		if task.Active {
			out = append(out, task)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ExecutionOrder < out[b].ExecutionOrder
	})
	return out
}

// Validate checks the job's fields and hierarchy invariants: no two tasks may
// share an id, and every task must itself be valid. A job with zero tasks is
// vacuously valid.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return apperrors.ValidationField("id", "job id is required")
	}
	if strings.TrimSpace(j.Name) == "" {
		return apperrors.ValidationField("name", "job name is required")
	}
	seen := make(map[string]struct{}, len(j.tasks))
	for _, task := range j.tasks {
		if err := task.Validate(); err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeValidation, "job %s: invalid task %s", j.ID, task.ID)
		}
		if _, dup := seen[task.ID]; dup {
			return apperrors.DuplicateID("job", task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

// Normalize applies task defaults across the job.
func (j *Job) Normalize() {
	for _, task := range j.tasks {
		task.Normalize()
	}
}

// Clone returns a deep copy of the job and its tasks.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	clone := &Job{
		ID:             j.ID,
		Name:           j.Name,
		Type:           j.Type,
		ExecutionOrder: j.ExecutionOrder,
		GroupID:        j.GroupID,
		Active:         j.Active,
	}
	if j.tasks != nil {
		clone.tasks = make([]*Task, len(j.tasks))
		for i, task := range j.tasks {
			clone.tasks[i] = task.Clone()
		}
	}
	return clone
}
