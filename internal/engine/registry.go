package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/observability/metrics"
	"github.com/conveyorhq/conveyor/internal/observability/statsd"
)

// defaultSnapshotRetention is how long a terminal snapshot stays readable
// from the registry before ownership passes to the persistence sink alone.
const defaultSnapshotRetention = 30 * time.Second

// RegistryOptions groups dependencies for Registry.
type RegistryOptions struct {
	Executor *RetryExecutor     // Required: task-level executor
	Sink     core.ExecutionSink // Optional: persistence collaborator for snapshots
	Logger   *slog.Logger       // Optional: structured logger
	Metrics  statsd.Sink        // Optional: lifecycle metric sink
	Now      func() time.Time   // Optional: clock override for tests
	// SnapshotRetention is how long terminal snapshots remain readable through
	// Get after a run finishes. Zero falls back to the built-in default.
	SnapshotRetention time.Duration
}

// Registry tracks in-flight executions by identifier. It lets a caller start
// a job or group in the background and get an execution id back immediately,
// cancel any live run by id, and read the latest snapshot of any run it
// started. Snapshots of finished runs are evicted after a retention window;
// the persistence sink owns them from the terminal transition on.
//
// The id→cancel map is the single shared-mutable-state boundary between
// submitters, completion callbacks, and cancellers; all access is serialized
// through one mutex.
type Registry struct {
	orch      *Orchestrator
	sink      core.ExecutionSink
	logger    *slog.Logger
	metrics   statsd.Sink
	retention time.Duration

	mu          sync.Mutex
	controllers map[string]context.CancelFunc
	snapshots   map[string]*model.Execution
	closed      bool

	wg sync.WaitGroup
}

// NewRegistry constructs a Registry. The registry routes every orchestrator
// snapshot through its own snapshot store before forwarding it to the
// caller-supplied sink.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retention := opts.SnapshotRetention
	if retention <= 0 {
		retention = defaultSnapshotRetention
	}

	r := &Registry{
		sink:        opts.Sink,
		logger:      logger,
		metrics:     opts.Metrics,
		retention:   retention,
		controllers: make(map[string]context.CancelFunc),
		snapshots:   make(map[string]*model.Execution),
	}

	orch, err := NewOrchestrator(OrchestratorOptions{
		Executor: opts.Executor,
		Sink:     r,
		Logger:   logger,
		Now:      opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	r.orch = orch

	return r, nil
}

// MustNewRegistry constructs a Registry and panics on error.
func MustNewRegistry(opts RegistryOptions) *Registry {
	r, err := NewRegistry(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create Registry: %v", err))
	}
	return r
}

// Save implements core.ExecutionSink. It records the snapshot in the
// registry's store and forwards it to the persistence collaborator. Snapshots
// for one execution arrive from a single goroutine in progress order, so the
// store is always monotonic per id.
func (r *Registry) Save(ctx context.Context, execution *model.Execution) error {
	r.mu.Lock()
	r.snapshots[execution.ID] = execution
	r.mu.Unlock()

	if r.sink == nil {
		return nil
	}
	return r.sink.Save(ctx, execution)
}

// SubmitJob validates a job, creates its Pending execution, and starts it in
// the background. It returns the execution id as soon as bookkeeping is in
// place. A validation error prevents the execution from ever being created.
func (r *Registry) SubmitJob(ctx context.Context, job *model.Job) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	job = job.Clone()
	job.Normalize()

	exec := r.orch.NewJobExecution(job, nil)
	return r.launch(ctx, exec, func(runCtx context.Context) {
		r.orch.ExecuteJob(runCtx, job, exec)
	})
}

// SubmitGroup validates a job group, creates its Pending aggregate execution,
// and starts it in the background.
func (r *Registry) SubmitGroup(ctx context.Context, group *model.JobGroup) (string, error) {
	if err := group.Validate(); err != nil {
		return "", err
	}
	group = group.Clone()
	group.Normalize()

	exec := r.orch.NewGroupExecution(group)
	return r.launch(ctx, exec, func(runCtx context.Context) {
		r.orch.ExecuteGroup(runCtx, group, exec)
	})
}

// launch registers the cancellation controller, publishes the Pending
// snapshot, and starts the run goroutine. Runs are detached from the
// submitter's context: a finished HTTP request must not cancel a background
// execution.
func (r *Registry) launch(ctx context.Context, exec *model.Execution, run func(context.Context)) (string, error) {
	runCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return "", fmt.Errorf("registry is shut down")
	}
	r.controllers[exec.ID] = cancel
	r.mu.Unlock()

	if err := r.Save(ctx, exec.Snapshot()); err != nil {
		r.logger.WarnContext(ctx, "persist pending execution failed",
			"execution_id", exec.ID, "error", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		run(runCtx)
		r.release(exec.ID)
		r.emit(exec, time.Since(start))
		r.evictAfter(exec.ID)
	}()

	r.logger.InfoContext(ctx, "execution submitted",
		"execution_id", exec.ID, "subject_kind", exec.SubjectKind,
		"subject_id", exec.SubjectID, "total", exec.TotalTasks)

	return exec.ID, nil
}

// Cancel signals the cancellation controller for the given execution id and
// removes it from the live set. It returns false if no running execution has
// that id: the id is unknown, or the run already finished. Cancellation is
// cooperative; a task already executing is allowed to finish its current
// attempt.
func (r *Registry) Cancel(executionID string) bool {
	r.mu.Lock()
	cancel, ok := r.controllers[executionID]
	if ok {
		delete(r.controllers, executionID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	r.logger.Info("execution cancel requested", "execution_id", executionID)
	return true
}

// Get returns the latest snapshot for an execution id, live or terminal, and
// whether the id is known to this registry.
func (r *Registry) Get(executionID string) (*model.Execution, bool) {
	r.mu.Lock()
	snap, ok := r.snapshots[executionID]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return snap.Snapshot(), true
}

// Live returns the number of executions whose cancellation controllers are
// still registered.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// release removes the execution from the live controller set on terminal
// transition. Cancel may have removed it already; whichever side finds the
// entry removes it, so removal happens exactly once.
func (r *Registry) release(executionID string) {
	r.mu.Lock()
	cancel, ok := r.controllers[executionID]
	if ok {
		delete(r.controllers, executionID)
	}
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// evictAfter drops a terminal snapshot once the retention window passes.
// Without eviction every execution the process ever ran would stay resident
// for its lifetime; status reads after the window fall through to the
// persistence layer.
func (r *Registry) evictAfter(executionID string) {
	time.AfterFunc(r.retention, func() {
		r.mu.Lock()
		delete(r.snapshots, executionID)
		r.mu.Unlock()
	})
}

func (r *Registry) emit(exec *model.Execution, elapsed time.Duration) {
	snap, ok := r.Get(exec.ID)
	if !ok {
		return
	}
	metrics.EmitExecutionLifecycle(r.metrics, metrics.ExecutionMetric{
		SubjectKind: string(snap.SubjectKind),
		Status:      string(snap.Status),
		Duration:    elapsed,
	})
}

// Shutdown cancels every live execution and waits for their goroutines to
// observe cancellation and finish, or for ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	cancels := make([]context.CancelFunc, 0, len(r.controllers))
	for id, cancel := range r.controllers {
		cancels = append(cancels, cancel)
		delete(r.controllers, id)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("registry shutdown: %w", ctx.Err())
	}
}
