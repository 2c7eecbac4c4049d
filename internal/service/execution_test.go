package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/engine"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
	"github.com/conveyorhq/conveyor/internal/mocks"
	"github.com/conveyorhq/conveyor/internal/testutil"
)

type executionFixture struct {
	svc    *ExecutionService
	groups *mocks.MockGroupRepository
	repo   *mocks.MockExecutionRepository
	cache  *mocks.MockSnapshotCache
}

// newExecutionFixture wires the service to a real in-process registry. Tasks
// resolve to no connector, so submitted runs complete as trivial successes.
func newExecutionFixture(t *testing.T, withCache bool) *executionFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	executor, err := engine.NewRetryExecutor(engine.RetryExecutorOptions{})
	require.NoError(t, err)
	registry, err := engine.NewRegistry(engine.RegistryOptions{Executor: executor})
	require.NoError(t, err)

	f := &executionFixture{
		groups: mocks.NewMockGroupRepository(ctrl),
		repo:   mocks.NewMockExecutionRepository(ctrl),
	}
	opts := ExecutionServiceOptions{
		Registry: registry,
		Groups:   f.groups,
		Repo:     f.repo,
	}
	if withCache {
		f.cache = mocks.NewMockSnapshotCache(ctrl)
		opts.Cache = f.cache
	}
	f.svc, err = NewExecutionService(opts)
	require.NoError(t, err)
	return f
}

func TestExecutionServiceSubmitJob(t *testing.T) {
	f := newExecutionFixture(t, false)

	job := testutil.BuildJob("j1", testutil.NewTask("t1").Build())
	f.groups.EXPECT().GetJob(gomock.Any(), "j1").Return(job, nil)

	id, err := f.svc.SubmitJob(context.Background(), "j1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The run is visible through Status immediately, first from the registry.
	snap, err := f.svc.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "j1", snap.SubjectID)
	assert.Equal(t, model.SubjectKindJob, snap.SubjectKind)
}

func TestExecutionServiceSubmitJobUnknown(t *testing.T) {
	f := newExecutionFixture(t, false)

	f.groups.EXPECT().GetJob(gomock.Any(), "missing").
		Return(nil, apperrors.NotFoundf("job %s not found", "missing"))

	id, err := f.svc.SubmitJob(context.Background(), "missing")
	assert.Empty(t, id)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExecutionServiceSubmitGroup(t *testing.T) {
	f := newExecutionFixture(t, false)

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1", testutil.NewTask("t1").Build()))
	f.groups.EXPECT().GetByID(gomock.Any(), "g1").Return(group, nil)

	id, err := f.svc.SubmitGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestExecutionServiceStatusFallsThroughCacheToRepo(t *testing.T) {
	f := newExecutionFixture(t, true)

	want := &model.Execution{ID: "e1", Status: model.ExecutionStatusCompleted}

	f.cache.EXPECT().Get(gomock.Any(), "e1").
		Return(nil, apperrors.NotFoundf("execution %s not cached", "e1"))
	f.repo.EXPECT().GetByID(gomock.Any(), "e1").Return(want, nil)

	snap, err := f.svc.Status(context.Background(), "e1")
	require.NoError(t, err)
	assert.Same(t, want, snap)
}

func TestExecutionServiceStatusCacheHit(t *testing.T) {
	f := newExecutionFixture(t, true)

	want := &model.Execution{ID: "e1", Status: model.ExecutionStatusFailed}
	f.cache.EXPECT().Get(gomock.Any(), "e1").Return(want, nil)

	snap, err := f.svc.Status(context.Background(), "e1")
	require.NoError(t, err)
	assert.Same(t, want, snap)
}

func TestExecutionServiceStatusCacheErrorFallsThrough(t *testing.T) {
	f := newExecutionFixture(t, true)

	want := &model.Execution{ID: "e1", Status: model.ExecutionStatusRunning}
	f.cache.EXPECT().Get(gomock.Any(), "e1").Return(nil, errors.New("redis unreachable"))
	f.repo.EXPECT().GetByID(gomock.Any(), "e1").Return(want, nil)

	snap, err := f.svc.Status(context.Background(), "e1")
	require.NoError(t, err)
	assert.Same(t, want, snap)
}

func TestExecutionServiceStatusWithoutCache(t *testing.T) {
	f := newExecutionFixture(t, false)

	f.repo.EXPECT().GetByID(gomock.Any(), "e1").
		Return(nil, apperrors.NotFoundf("execution %s not found", "e1"))

	_, err := f.svc.Status(context.Background(), "e1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExecutionServiceCancelUnknown(t *testing.T) {
	f := newExecutionFixture(t, false)
	assert.False(t, f.svc.Cancel(context.Background(), "no-such-run"))
}

func TestExecutionServiceList(t *testing.T) {
	f := newExecutionFixture(t, false)

	opts := core.ExecutionListOptions{Status: model.ExecutionStatusFailed, Limit: 10}
	f.repo.EXPECT().List(gomock.Any(), opts).Return([]*model.Execution{{ID: "e1"}}, nil)

	out, err := f.svc.List(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestExecutionServiceLiveDrainsToZero(t *testing.T) {
	f := newExecutionFixture(t, false)

	job := testutil.BuildJob("j1", testutil.NewTask("t1").Build())
	f.groups.EXPECT().GetJob(gomock.Any(), "j1").Return(job, nil)

	_, err := f.svc.SubmitJob(context.Background(), "j1")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.svc.Live() == 0 },
		5*time.Second, 5*time.Millisecond)
}

func TestNewExecutionServiceValidation(t *testing.T) {
	_, err := NewExecutionService(ExecutionServiceOptions{})
	require.Error(t, err)
}
