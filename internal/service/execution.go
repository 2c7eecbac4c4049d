package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/engine"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// ExecutionServiceOptions configures an ExecutionService.
type ExecutionServiceOptions struct {
	Registry *engine.Registry
	Groups   core.GroupRepository
	Repo     core.ExecutionRepository
	// Cache is optional; status reads fall through to the repository on a miss.
	Cache  core.SnapshotCache
	Logger *slog.Logger
}

// ExecutionService submits runs, cancels them, and answers status queries.
// Status reads prefer the in-process registry, then the snapshot cache, then
// the database.
type ExecutionService struct {
	registry *engine.Registry
	groups   core.GroupRepository
	repo     core.ExecutionRepository
	cache    core.SnapshotCache
	logger   *slog.Logger
}

// NewExecutionService creates a new ExecutionService.
func NewExecutionService(opts ExecutionServiceOptions) (*ExecutionService, error) {
	if opts.Registry == nil {
		return nil, errors.New("execution service: registry is required")
	}
	if opts.Groups == nil {
		return nil, errors.New("execution service: groups is required")
	}
	if opts.Repo == nil {
		return nil, errors.New("execution service: repo is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionService{
		registry: opts.Registry,
		groups:   opts.Groups,
		repo:     opts.Repo,
		cache:    opts.Cache,
		logger:   logger,
	}, nil
}

// SubmitJob looks up a stored job definition and starts a run of it. The
// returned id identifies the new execution; the run proceeds in the
// background.
func (s *ExecutionService) SubmitJob(ctx context.Context, jobID string) (string, error) {
	job, err := s.groups.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	return s.registry.SubmitJob(ctx, job)
}

// SubmitGroup looks up a stored group definition and starts a run of it.
func (s *ExecutionService) SubmitGroup(ctx context.Context, groupID string) (string, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return "", err
	}
	return s.registry.SubmitGroup(ctx, group)
}

// Cancel requests cooperative cancellation of a live run. Returns false when
// the id is unknown or the run already finished.
func (s *ExecutionService) Cancel(_ context.Context, executionID string) bool {
	return s.registry.Cancel(executionID)
}

// Status returns the latest snapshot for an execution id.
func (s *ExecutionService) Status(ctx context.Context, executionID string) (*model.Execution, error) {
	if snap, ok := s.registry.Get(executionID); ok {
		return snap, nil
	}
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, executionID)
		if err == nil {
			return snap, nil
		}
		if !apperrors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "snapshot cache read failed",
				"execution_id", executionID, "error", err)
		}
	}
	return s.repo.GetByID(ctx, executionID)
}

// List returns persisted execution records matching the filters.
func (s *ExecutionService) List(ctx context.Context, opts core.ExecutionListOptions) ([]*model.Execution, error) {
	return s.repo.List(ctx, opts)
}

// Live returns the number of runs currently registered in this process.
func (s *ExecutionService) Live() int {
	return s.registry.Live()
}
