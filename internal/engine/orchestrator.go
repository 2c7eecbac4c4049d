package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// OrchestratorOptions groups dependencies for Orchestrator.
type OrchestratorOptions struct {
	Executor *RetryExecutor     // Required: task-level executor
	Sink     core.ExecutionSink // Optional: receives every execution snapshot
	Logger   *slog.Logger       // Optional: structured logger
	Now      func() time.Time   // Optional: clock override for tests
}

// Orchestrator walks one hierarchy level in execution order, invoking the
// retry executor for tasks and itself one level down for jobs within a group.
// Each level follows the same state machine: Pending → Running →
// {Completed | Failed | Cancelled}. It stops at the first failing child and
// records how far it got.
//
// The orchestrator owns the Execution it drives for the lifetime of a run;
// everything published to the sink is a snapshot copy.
type Orchestrator struct {
	executor *RetryExecutor
	sink     core.ExecutionSink
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		executor: opts.Executor,
		sink:     opts.Sink,
		logger:   logger,
		now:      now,
	}, nil
}

// MustNewOrchestrator constructs an Orchestrator and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	orch, err := NewOrchestrator(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create Orchestrator: %v", err))
	}
	return orch
}

// RunJob validates and runs a job synchronously to completion, honouring ctx
// for cooperative cancellation. The returned Execution is terminal. A
// validation error prevents an Execution from ever being created.
func (o *Orchestrator) RunJob(ctx context.Context, job *model.Job) (*model.Execution, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	job = job.Clone()
	job.Normalize()

	exec := o.NewJobExecution(job, nil)
	o.ExecuteJob(ctx, job, exec)
	return exec, nil
}

// RunGroup validates and runs a job group synchronously to completion.
func (o *Orchestrator) RunGroup(ctx context.Context, group *model.JobGroup) (*model.Execution, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	group = group.Clone()
	group.Normalize()

	exec := o.NewGroupExecution(group)
	o.ExecuteGroup(ctx, group, exec)
	return exec, nil
}

// NewJobExecution creates the Pending execution record for one job run.
// parentID links it to a group execution when the job runs as part of one.
func (o *Orchestrator) NewJobExecution(job *model.Job, parentID *string) *model.Execution {
	now := o.now()
	return &model.Execution{
		ID:          uuid.NewString(),
		SubjectKind: model.SubjectKindJob,
		SubjectID:   job.ID,
		SubjectName: job.Name,
		ParentID:    parentID,
		Status:      model.ExecutionStatusPending,
		TotalTasks:  len(job.ActiveTasks()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewGroupExecution creates the Pending aggregate execution record for one
// group run. Its counters count child jobs rather than tasks.
func (o *Orchestrator) NewGroupExecution(group *model.JobGroup) *model.Execution {
	now := o.now()
	return &model.Execution{
		ID:          uuid.NewString(),
		SubjectKind: model.SubjectKindGroup,
		SubjectID:   group.ID,
		SubjectName: group.Name,
		Status:      model.ExecutionStatusPending,
		TotalTasks:  len(group.ActiveJobs()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ExecuteJob drives an existing execution through the job's active tasks in
// execution order, to a terminal status. The job must already be validated
// and normalized, and the execution must be Pending.
func (o *Orchestrator) ExecuteJob(ctx context.Context, job *model.Job, exec *model.Execution) {
	tasks := job.ActiveTasks()
	o.begin(ctx, exec, len(tasks))

	stage := model.NewStageContext()
	for i, task := range tasks {
		if ctx.Err() != nil {
			o.markCancelled(ctx, exec)
			return
		}

		// Required stage inputs are checked before the unit of work runs.
		if missing := stage.Missing(task.Requires); len(missing) > 0 {
			o.markFailed(ctx, exec, apperrors.MissingInput(task.Name, task.ID, missing).Error())
			return
		}

		result := o.executor.Execute(ctx, task, stage)
		switch result.State {
		case TaskStateCancelled:
			o.markCancelled(ctx, exec)
			return
		case TaskStateFailed:
			o.markFailed(ctx, exec, fmt.Sprintf(
				"task %s (%s) failed after %d attempt(s): %s",
				task.Name, task.ID, result.Attempts, result.Err))
			return
		case TaskStateSucceeded:
			stage.Put(task.ID, result.Output)
			if task.OutputKey != "" {
				stage.Put(task.OutputKey, result.Output)
			}
			o.advance(ctx, exec, i+1)
		}
	}

	o.markCompleted(ctx, exec)
}

// ExecuteGroup drives a group execution through its active jobs in execution
// order. Each child job produces its own execution record, linked to the
// aggregate through ParentID; child failure fails the group one level up with
// the same fail-fast semantics.
func (o *Orchestrator) ExecuteGroup(ctx context.Context, group *model.JobGroup, exec *model.Execution) {
	jobs := group.ActiveJobs()
	o.begin(ctx, exec, len(jobs))

	for i, job := range jobs {
		if ctx.Err() != nil {
			o.markCancelled(ctx, exec)
			return
		}

		child := o.NewJobExecution(job, &exec.ID)
		o.ExecuteJob(ctx, job, child)

		switch child.Status {
		case model.ExecutionStatusCancelled:
			o.markCancelled(ctx, exec)
			return
		case model.ExecutionStatusFailed:
			cause := ""
			if child.ErrorMessage != nil {
				cause = ": " + *child.ErrorMessage
			}
			o.markFailed(ctx, exec, fmt.Sprintf("job %s (%s) failed%s", job.Name, job.ID, cause))
			return
		default:
			o.advance(ctx, exec, i+1)
		}
	}

	o.markCompleted(ctx, exec)
}

// begin transitions Pending → Running and publishes the first snapshot.
func (o *Orchestrator) begin(ctx context.Context, exec *model.Execution, total int) {
	started := o.now()
	exec.Status = model.ExecutionStatusRunning
	exec.StartedAt = &started
	exec.TotalTasks = total
	exec.CurrentTaskIndex = 0
	exec.RecomputeProgress()
	exec.UpdatedAt = started
	o.publish(ctx, exec)
}

// advance records one more completed child and publishes the progress update.
func (o *Orchestrator) advance(ctx context.Context, exec *model.Execution, index int) {
	exec.CurrentTaskIndex = index
	exec.RecomputeProgress()
	exec.UpdatedAt = o.now()
	o.publish(ctx, exec)
}

func (o *Orchestrator) markCompleted(ctx context.Context, exec *model.Execution) {
	exec.Status = model.ExecutionStatusCompleted
	exec.CurrentTaskIndex = exec.TotalTasks
	o.finish(ctx, exec)
}

func (o *Orchestrator) markFailed(ctx context.Context, exec *model.Execution, message string) {
	exec.Status = model.ExecutionStatusFailed
	exec.ErrorMessage = &message
	o.finish(ctx, exec)
	o.logger.WarnContext(ctx, "execution failed",
		"execution_id", exec.ID, "subject_kind", exec.SubjectKind,
		"subject_id", exec.SubjectID, "error", message)
}

// markCancelled records the Cancelled terminal state. A cancelled run carries
// no error message, only the progress reached at cancellation time.
func (o *Orchestrator) markCancelled(ctx context.Context, exec *model.Execution) {
	exec.Status = model.ExecutionStatusCancelled
	o.finish(ctx, exec)
	o.logger.InfoContext(ctx, "execution cancelled",
		"execution_id", exec.ID, "subject_kind", exec.SubjectKind,
		"subject_id", exec.SubjectID, "progress", exec.ProgressPercentage)
}

func (o *Orchestrator) finish(ctx context.Context, exec *model.Execution) {
	completed := o.now()
	exec.CompletedAt = &completed
	if exec.StartedAt != nil {
		exec.DurationMs = completed.Sub(*exec.StartedAt).Milliseconds()
	}
	exec.RecomputeProgress()
	exec.UpdatedAt = completed
	o.publish(ctx, exec)
}

// publish forwards a snapshot to the sink. Sink failures are persistence
// warnings: logged and swallowed, never propagated into the run's outcome.
// Terminal snapshots must still reach the sink after the run context was
// cancelled, so the save uses a context detached from cancellation.
func (o *Orchestrator) publish(ctx context.Context, exec *model.Execution) {
	if o.sink == nil {
		return
	}
	if err := o.sink.Save(context.WithoutCancel(ctx), exec.Snapshot()); err != nil {
		o.logger.WarnContext(ctx, "persist execution snapshot failed",
			"execution_id", exec.ID, "status", exec.Status, "error", err)
	}
}
