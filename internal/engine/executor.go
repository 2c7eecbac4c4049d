// Package engine implements the conveyor execution core: the per-task retry
// executor, the sequential orchestrator that walks the Job/JobGroup
// hierarchy, and the registry that tracks in-flight executions.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/domain/retry"
)

// TaskState is the explicit outcome of executing one task through the retry
// executor. Failure causes travel in the result, never as a panic.
type TaskState string

const (
	// TaskStateSucceeded indicates the unit of work returned success.
	TaskStateSucceeded TaskState = "succeeded"
	// TaskStateFailed indicates the unit of work failed or faulted after
	// exhausting its attempts.
	TaskStateFailed TaskState = "failed"
	// TaskStateCancelled indicates cancellation was observed before an
	// attempt started.
	TaskStateCancelled TaskState = "cancelled"
)

// TaskResult reports how a single task execution ended.
type TaskResult struct {
	State    TaskState
	Attempts int
	Output   []byte
	Detail   string
	Err      string
}

// RetryExecutorOptions groups dependencies for RetryExecutor.
type RetryExecutorOptions struct {
	Connectors core.ConnectorResolver // Optional: nil treats every task as a trivial success
	Policy     *retry.BackoffPolicy   // Optional: defaults to the built-in bases
	Logger     *slog.Logger           // Optional: structured logger
	// DefaultMaxRetries is the attempt budget for tasks that do not set their
	// own. Zero falls back to the model default.
	DefaultMaxRetries int
	// DefaultTimeout bounds a single attempt for tasks that do not set their
	// own. Zero falls back to the model default.
	DefaultTimeout time.Duration
	// Sleep waits for the backoff delay, returning early with ctx.Err() on
	// cancellation. Overridable for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RetryExecutor runs a single task's unit of work with bounded retries and
// exponential backoff. It never lets a fault escape its boundary: any error
// or panic on the final attempt becomes a failure result carrying the fault's
// message.
type RetryExecutor struct {
	connectors        core.ConnectorResolver
	policy            *retry.BackoffPolicy
	logger            *slog.Logger
	defaultMaxRetries int
	defaultTimeout    time.Duration
	sleep             func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor constructs a RetryExecutor.
func NewRetryExecutor(opts RetryExecutorOptions) (*RetryExecutor, error) {
	policy := opts.Policy
	if policy == nil {
		var err error
		policy, err = retry.NewBackoffPolicy(retry.BackoffPolicyOptions{})
		if err != nil {
			return nil, fmt.Errorf("create backoff policy: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxRetries := opts.DefaultMaxRetries
	if maxRetries <= 0 {
		maxRetries = model.DefaultMaxRetries
	}
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = model.DefaultTimeoutSeconds * time.Second
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	return &RetryExecutor{
		connectors:        opts.Connectors,
		policy:            policy,
		logger:            logger,
		defaultMaxRetries: maxRetries,
		defaultTimeout:    timeout,
		sleep:             sleep,
	}, nil
}

// Execute runs one task to a terminal result. maxRetries is the total attempt
// count, inclusive of the first; the delay before attempt n is
// base * 2^(n-2). The cancellation signal is checked before each attempt and
// during backoff waits, never pre-empting an attempt already in flight.
func (e *RetryExecutor) Execute(ctx context.Context, task *model.Task, stage *model.StageContext) TaskResult {
	connector, ok := e.resolve(task.Type)
	if !ok {
		// Placeholder or manual step: no unit of work means trivial success.
		return TaskResult{State: TaskStateSucceeded}
	}

	if connector.RequiresConfig() && len(task.Config) == 0 {
		return TaskResult{
			State: TaskStateFailed,
			Err:   fmt.Sprintf("task %s: connector %s requires a configuration payload", task.ID, task.Type),
		}
	}

	maxRetries := task.MaxRetries
	if maxRetries <= 0 {
		maxRetries = e.defaultMaxRetries
	}

	schedule := e.newSchedule(task.Type)
	req := core.WorkRequest{Task: task, Config: task.Config, Stage: stage}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return TaskResult{State: TaskStateCancelled, Attempts: attempt - 1}
		}

		result, err := e.runAttempt(ctx, connector, task, req)
		if err == nil {
			var output []byte
			var detail string
			if result != nil {
				output = result.Output
				detail = result.Detail
			}
			return TaskResult{
				State:    TaskStateSucceeded,
				Attempts: attempt,
				Output:   output,
				Detail:   detail,
			}
		}
		lastErr = err

		// An attempt interrupted by external cancellation is reported as
		// cancelled, not failed.
		if ctx.Err() != nil {
			return TaskResult{State: TaskStateCancelled, Attempts: attempt}
		}

		if attempt < maxRetries {
			delay := schedule.NextBackOff()
			e.logger.DebugContext(ctx, "task attempt failed, backing off",
				"task_id", task.ID, "task_type", task.Type,
				"attempt", attempt, "max_retries", maxRetries,
				"delay", delay, "error", err)
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return TaskResult{State: TaskStateCancelled, Attempts: attempt}
			}
		}
	}

	return TaskResult{
		State:    TaskStateFailed,
		Attempts: maxRetries,
		Err:      lastErr.Error(),
	}
}

// runAttempt executes one attempt under the task's timeout, converting panics
// from caller-supplied work into errors so no fault crosses the executor
// boundary.
func (e *RetryExecutor) runAttempt(
	ctx context.Context,
	connector core.Connector,
	task *model.Task,
	req core.WorkRequest,
) (result *core.WorkResult, err error) {
	timeout := time.Duration(task.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("unit of work panicked: %v", r)
		}
	}()

	return connector.Run(attemptCtx, req)
}

func (e *RetryExecutor) resolve(kind model.TaskType) (core.Connector, bool) {
	if e.connectors == nil {
		return nil, false
	}
	connector, ok := e.connectors.Resolve(kind)
	if !ok || connector == nil {
		return nil, false
	}
	return connector, true
}

// newSchedule builds the exponential backoff schedule for a task category:
// base * 2^(n-1) with no jitter and no elapsed-time cap, so the delay sequence
// is exactly base, 2*base, 4*base, ...
func (e *RetryExecutor) newSchedule(category model.TaskType) backoff.BackOff {
	decision := e.policy.Resolve(category)
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = decision.Base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Hour
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
