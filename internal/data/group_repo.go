package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// GroupRepo provides database operations for job group definitions. Each
// group is stored as a whole JSONB document so a read reproduces job ordering
// and task configuration payloads exactly as submitted.
type GroupRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ core.GroupRepository = (*GroupRepo)(nil)

// GroupRepoOptions configures a GroupRepo.
type GroupRepoOptions struct {
	DB           *sql.DB
	TimeProvider TimeProvider
	Logger       *slog.Logger
}

// NewGroupRepo creates a new GroupRepo instance.
func NewGroupRepo(opts GroupRepoOptions) (*GroupRepo, error) {
	if opts.DB == nil {
		return nil, errors.New("group repo: db is required")
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupRepo{db: opts.DB, timeProvider: tp, logger: logger}, nil
}

// Create stores a new group definition. A duplicate id surfaces as a
// duplicate_id application error.
func (r *GroupRepo) Create(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	definition, err := json.Marshal(group)
	if err != nil {
		return nil, fmt.Errorf("marshal group definition: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	const query = `
		INSERT INTO job_groups (id, name, active, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`
	if _, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.Active, definition, now); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	r.logger.InfoContext(ctx, "job group created", "group_id", group.ID, "name", group.Name)
	return group.Clone(), nil
}

// GetByID fetches a group definition by id.
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*model.JobGroup, error) {
	const query = `SELECT definition FROM job_groups WHERE id = $1`

	var definition []byte
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&definition); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job group %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return unmarshalGroup(definition)
}

// GetJob finds a single job definition by id across all stored groups.
func (r *GroupRepo) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	const query = `
		SELECT definition FROM job_groups
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(definition -> 'jobs') AS j
			WHERE j ->> 'id' = $1
		)
		LIMIT 1`

	var definition []byte
	if err := r.db.QueryRowContext(ctx, query, jobID).Scan(&definition); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", jobID)
		}
		return nil, apperrors.MapDBError(err)
	}

	group, err := unmarshalGroup(definition)
	if err != nil {
		return nil, err
	}
	for _, job := range group.Jobs() {
		if job.ID == jobID {
			return job, nil
		}
	}
	return nil, apperrors.NotFoundf("job %s not found", jobID)
}

// List returns stored groups ordered by creation time, newest first.
func (r *GroupRepo) List(ctx context.Context, limit, offset int) ([]*model.JobGroup, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
		SELECT definition FROM job_groups
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer func() { _ = rows.Close() }()

	var groups []*model.JobGroup
	for rows.Next() {
		var definition []byte
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		group, err := unmarshalGroup(definition)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return groups, nil
}

// Update replaces a stored group definition.
func (r *GroupRepo) Update(ctx context.Context, group *model.JobGroup) (*model.JobGroup, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	definition, err := json.Marshal(group)
	if err != nil {
		return nil, fmt.Errorf("marshal group definition: %w", err)
	}

	const query = `
		UPDATE job_groups
		SET name = $2, active = $3, definition = $4, updated_at = $5
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.Active, definition, r.timeProvider.Now().UTC())
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperrors.NotFoundf("job group %s not found", group.ID)
	}

	r.logger.InfoContext(ctx, "job group updated", "group_id", group.ID)
	return group.Clone(), nil
}

// Delete removes a group definition. Returns false if the id was unknown.
func (r *GroupRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM job_groups WHERE id = $1`, id)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func unmarshalGroup(definition []byte) (*model.JobGroup, error) {
	var group model.JobGroup
	if err := json.Unmarshal(definition, &group); err != nil {
		return nil, fmt.Errorf("unmarshal group definition: %w", err)
	}
	return &group, nil
}
