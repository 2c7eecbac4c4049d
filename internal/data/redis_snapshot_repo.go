package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// DefaultSnapshotTTL bounds how long a cached snapshot outlives its last
// update. Terminal snapshots age out; the database remains the record.
const DefaultSnapshotTTL = 24 * time.Hour

// RedisSnapshotRepo caches the latest execution snapshot per execution id in
// Redis for cheap status polling.
type RedisSnapshotRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ core.SnapshotCache = (*RedisSnapshotRepo)(nil)

// NewRedisSnapshotRepo creates a new RedisSnapshotRepo with the given Redis
// client. A non-positive ttl falls back to DefaultSnapshotTTL.
func NewRedisSnapshotRepo(client redis.UniversalClient, ttl time.Duration) *RedisSnapshotRepo {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotRepo{client: client, ttl: ttl}
}

// Put stores the snapshot under its execution id, refreshing the TTL.
func (r *RedisSnapshotRepo) Put(ctx context.Context, execution *model.Execution) error {
	if execution == nil || execution.ID == "" {
		return errors.New("execution id is required")
	}

	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("marshal execution snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(execution.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get retrieves the latest snapshot for an execution id. A cache miss is a
// not_found application error so callers can fall through to the database.
func (r *RedisSnapshotRepo) Get(ctx context.Context, executionID string) (*model.Execution, error) {
	if executionID == "" {
		return nil, errors.New("execution id is required")
	}

	payload, err := r.client.Get(ctx, snapshotKey(executionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFoundf("execution %s not in snapshot cache", executionID)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var execution model.Execution
	if err := json.Unmarshal(payload, &execution); err != nil {
		return nil, fmt.Errorf("unmarshal execution snapshot: %w", err)
	}
	return &execution, nil
}

func snapshotKey(executionID string) string {
	return "conveyor:execution:" + executionID
}
