package data

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conveyorhq/conveyor/internal/errors"
	"github.com/conveyorhq/conveyor/internal/testutil"
)

func newTestGroupRepo(t *testing.T) (*GroupRepo, *FixedTimeProvider) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tp := NewFixedTimeProvider(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	repo, err := NewGroupRepo(GroupRepoOptions{DB: db, TimeProvider: tp})
	require.NoError(t, err)
	return repo, tp
}

func TestGroupRepoCreateAndGet(t *testing.T) {
	repo, _ := newTestGroupRepo(t)
	ctx := context.Background()

	task := testutil.NewTask("t1").
		WithType("fetch_api_data").
		WithOrder(1).
		WithConfig(`{"url":"https://example.com","ok_status":200}`).
		WithOutputKey("data").
		Build()
	group := testutil.BuildGroup("g1", testutil.BuildJob("j1", task))

	created, err := repo.Create(ctx, group)
	require.NoError(t, err)
	assert.Equal(t, "g1", created.ID)

	got, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)

	// The stored definition reproduces the submitted one exactly.
	want, err := json.Marshal(group)
	require.NoError(t, err)
	stored, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(stored))
}

func TestGroupRepoCreateDuplicate(t *testing.T) {
	repo, _ := newTestGroupRepo(t)
	ctx := context.Background()

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1"))
	_, err := repo.Create(ctx, group)
	require.NoError(t, err)

	_, err = repo.Create(ctx, testutil.BuildGroup("g1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateID(err))
}

func TestGroupRepoGetByIDNotFound(t *testing.T) {
	repo, _ := newTestGroupRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGroupRepoGetJob(t *testing.T) {
	repo, tp := newTestGroupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testutil.BuildGroup("g1",
		testutil.BuildJob("j1", testutil.NewTask("t1").Build())))
	require.NoError(t, err)
	tp.AddTime(time.Second)
	_, err = repo.Create(ctx, testutil.BuildGroup("g2",
		testutil.BuildJob("j2", testutil.NewTask("t2").Build())))
	require.NoError(t, err)

	job, err := repo.GetJob(ctx, "j2")
	require.NoError(t, err)
	assert.Equal(t, "j2", job.ID)
	require.Len(t, job.Tasks(), 1)
	assert.Equal(t, "t2", job.Tasks()[0].ID)

	_, err = repo.GetJob(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGroupRepoListNewestFirst(t *testing.T) {
	repo, tp := newTestGroupRepo(t)
	ctx := context.Background()

	for _, id := range []string{"g1", "g2", "g3"} {
		_, err := repo.Create(ctx, testutil.BuildGroup(id))
		require.NoError(t, err)
		tp.AddTime(time.Minute)
	}

	groups, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "g3", groups[0].ID)
	assert.Equal(t, "g1", groups[2].ID)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "g2", page[0].ID)
}

func TestGroupRepoUpdate(t *testing.T) {
	repo, _ := newTestGroupRepo(t)
	ctx := context.Background()

	group := testutil.BuildGroup("g1", testutil.BuildJob("j1"))
	_, err := repo.Create(ctx, group)
	require.NoError(t, err)

	group.Name = "renamed"
	updated, err := repo.Update(ctx, group)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	got, err := repo.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	_, err = repo.Update(ctx, testutil.BuildGroup("missing"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGroupRepoDelete(t *testing.T) {
	repo, _ := newTestGroupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testutil.BuildGroup("g1"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, "g1")
	assert.True(t, apperrors.IsNotFound(err))
}
