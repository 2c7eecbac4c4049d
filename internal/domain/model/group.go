package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// JobGroup is an ordered collection of jobs executed as a unit. The job
// collection is a single owned slice exposed only through copying accessors.
type JobGroup struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`

	jobs []*Job
}

type jobGroupJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Jobs   []*Job `json:"jobs"`
}

// MarshalJSON implements json.Marshaler, preserving job insertion order.
func (g *JobGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobGroupJSON{
		ID:     g.ID,
		Name:   g.Name,
		Active: g.Active,
		Jobs:   g.jobs,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown fields are rejected so
// strict request decoding stays strict across this custom unmarshaler.
func (g *JobGroup) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw jobGroupJSON
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	g.ID = raw.ID
	g.Name = raw.Name
	g.Active = raw.Active
	g.jobs = raw.Jobs
	return nil
}

// AddJob appends a job to the group. It fails with a DuplicateID error if a
// job with the same id already exists, and records the parent reference on
// the job.
func (g *JobGroup) AddJob(job *Job) error {
	if job == nil {
		return apperrors.Validation("job is required")
	}
	for _, existing := range g.jobs {
		if existing.ID == job.ID {
			return apperrors.DuplicateID("job group", job.ID)
		}
	}
	job.GroupID = g.ID
	g.jobs = append(g.jobs, job)
	return nil
}

// RemoveJob removes the job with the given id. It returns false if no job has
// that id.
func (g *JobGroup) RemoveJob(id string) bool {
	for i, job := range g.jobs {
		if job.ID == id {
			g.jobs = append(g.jobs[:i], g.jobs[i+1:]...)
			return true
		}
	}
	return false
}

// Jobs returns a copy of the job collection in insertion order.
func (g *JobGroup) Jobs() []*Job {
	out := make([]*Job, len(g.jobs))
	copy(out, g.jobs)
	return out
}

// ActiveJobs returns the active jobs in ascending execution order. Ties are
// broken by insertion order.
func (g *JobGroup) ActiveJobs() []*Job {
	out := make([]*Job, 0, len(g.jobs))
	for _, job := range g.jobs {
		if job.Active {
			out = append(out, job)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ExecutionOrder < out[b].ExecutionOrder
	})
	return out
}

// Validate checks the group's fields and hierarchy invariants: no two jobs
// may share an id, and every job must itself be valid.
func (g *JobGroup) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return apperrors.ValidationField("id", "job group id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return apperrors.ValidationField("name", "job group name is required")
	}
	seen := make(map[string]struct{}, len(g.jobs))
	for _, job := range g.jobs {
		if err := job.Validate(); err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeValidation, "group %s: invalid job %s", g.ID, job.ID)
		}
		if _, dup := seen[job.ID]; dup {
			return apperrors.DuplicateID("job group", job.ID)
		}
		seen[job.ID] = struct{}{}
	}
	return nil
}

// Normalize applies defaults across the group's jobs and tasks.
func (g *JobGroup) Normalize() {
	for _, job := range g.jobs {
		job.Normalize()
	}
}

// Clone returns a deep copy of the group and its jobs.
func (g *JobGroup) Clone() *JobGroup {
	if g == nil {
		return nil
	}
	clone := &JobGroup{
		ID:     g.ID,
		Name:   g.Name,
		Active: g.Active,
	}
	if g.jobs != nil {
		clone.jobs = make([]*Job, len(g.jobs))
		for i, job := range g.jobs {
			clone.jobs[i] = job.Clone()
		}
	}
	return clone
}
