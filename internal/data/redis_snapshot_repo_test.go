package data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// setupTestRedis connects to a local Redis instance. Gated behind TEST_REDIS
// the same way database tests are gated behind TEST_DB.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("TEST_REDIS") == "" {
		t.Skip("set TEST_REDIS=1 to run redis integration tests")
	}

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err(), "is redis up?")

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisSnapshotRepoPutGet(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisSnapshotRepo(client, time.Minute)
	ctx := context.Background()

	message := "boom"
	exec := &model.Execution{
		ID:                 "e1",
		SubjectKind:        model.SubjectKindJob,
		SubjectID:          "j1",
		Status:             model.ExecutionStatusFailed,
		CurrentTaskIndex:   1,
		TotalTasks:         3,
		ProgressPercentage: 33,
		ErrorMessage:       &message,
	}
	require.NoError(t, repo.Put(ctx, exec))

	got, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, exec.ID, got.ID)
	assert.Equal(t, exec.Status, got.Status)
	assert.Equal(t, 33, got.ProgressPercentage)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "boom", *got.ErrorMessage)
}

func TestRedisSnapshotRepoGetMissIsNotFound(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisSnapshotRepo(client, time.Minute)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err), "a miss must let callers fall through to the database")
}

func TestRedisSnapshotRepoPutOverwrites(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisSnapshotRepo(client, time.Minute)
	ctx := context.Background()

	exec := &model.Execution{ID: "e1", Status: model.ExecutionStatusRunning}
	require.NoError(t, repo.Put(ctx, exec))

	exec.Status = model.ExecutionStatusCompleted
	exec.ProgressPercentage = 100
	require.NoError(t, repo.Put(ctx, exec))

	got, err := repo.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, model.ExecutionStatusCompleted, got.Status)
	assert.Equal(t, 100, got.ProgressPercentage)
}

func TestRedisSnapshotRepoValidation(t *testing.T) {
	repo := NewRedisSnapshotRepo(nil, 0)

	require.Error(t, repo.Put(context.Background(), nil))
	require.Error(t, repo.Put(context.Background(), &model.Execution{}))
	_, err := repo.Get(context.Background(), "")
	require.Error(t, err)
}
