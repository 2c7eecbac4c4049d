// Package service contains the application services that sit between the
// HTTP handlers and the engine and repositories.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// GroupServiceOptions configures a GroupService.
type GroupServiceOptions struct {
	Repo   core.GroupRepository
	Logger *slog.Logger
}

// GroupService manages job group definitions.
type GroupService struct {
	repo   core.GroupRepository
	logger *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(opts GroupServiceOptions) (*GroupService, error) {
	if opts.Repo == nil {
		return nil, errors.New("group service: repo is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{repo: opts.Repo, logger: logger}, nil
}

// Create normalizes, validates, and stores a group definition. Missing ids
// anywhere in the hierarchy are assigned.
func (s *GroupService) Create(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error) {
	if group == nil {
		return nil, errors.New("group is required")
	}
	assignIDs(group)
	group.Normalize()
	if err := group.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, group)
}

// Get fetches a group definition by id.
func (s *GroupService) Get(ctx context.Context, id string) (*model.JobGroup, error) {
	return s.repo.GetByID(ctx, id)
}

// GetJob finds a single job definition by id across all stored groups.
func (s *GroupService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	return s.repo.GetJob(ctx, jobID)
}

// List returns stored groups, newest first.
func (s *GroupService) List(ctx context.Context, limit, offset int) ([]*model.JobGroup, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update replaces a stored group definition.
func (s *GroupService) Update(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error) {
	if group == nil {
		return nil, errors.New("group is required")
	}
	group.Normalize()
	if err := group.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, group)
}

// Delete removes a group definition. Returns false if the id was unknown.
func (s *GroupService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// assignIDs fills missing ids across the group, its jobs, and their tasks.
func assignIDs(group *model.JobGroup) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	for _, job := range group.Jobs() {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		job.GroupID = group.ID
		for _, task := range job.Tasks() {
			if task.ID == "" {
				task.ID = uuid.NewString()
			}
		}
	}
}
