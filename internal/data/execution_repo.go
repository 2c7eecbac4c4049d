package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
	apperrors "github.com/conveyorhq/conveyor/internal/errors"
)

// ExecutionRepo provides database operations for execution run records.
type ExecutionRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ core.ExecutionRepository = (*ExecutionRepo)(nil)

// ExecutionRepoOptions configures an ExecutionRepo.
type ExecutionRepoOptions struct {
	DB           *sql.DB
	TimeProvider TimeProvider
	Logger       *slog.Logger
}

// NewExecutionRepo creates a new ExecutionRepo instance.
func NewExecutionRepo(opts ExecutionRepoOptions) (*ExecutionRepo, error) {
	if opts.DB == nil {
		return nil, errors.New("execution repo: db is required")
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionRepo{db: opts.DB, timeProvider: tp, logger: logger}, nil
}

const executionColumns = `
  id,
  subject_kind,
  subject_id,
  subject_name,
  parent_id,
  status,
  current_task_index,
  total_tasks,
  progress_percentage,
  started_at,
  completed_at,
  duration_ms,
  error_message,
  created_at,
  updated_at
`

// Save upserts an execution snapshot. The engine calls it for the initial
// pending record, for every progress update, and for the terminal transition,
// so insert and update are the same operation.
func (r *ExecutionRepo) Save(ctx context.Context, execution *model.Execution) error {
	if execution == nil {
		return errors.New("execution is required")
	}
	if execution.ID == "" {
		return errors.New("execution id is required")
	}

	const query = `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			current_task_index = EXCLUDED.current_task_index,
			total_tasks = EXCLUDED.total_tasks,
			progress_percentage = EXCLUDED.progress_percentage,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			duration_ms = EXCLUDED.duration_ms,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at`

	now := r.timeProvider.Now().UTC()
	createdAt := execution.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	if _, err := r.db.ExecContext(ctx, query,
		execution.ID,
		string(execution.SubjectKind),
		execution.SubjectID,
		execution.SubjectName,
		execution.ParentID,
		string(execution.Status),
		execution.CurrentTaskIndex,
		execution.TotalTasks,
		execution.ProgressPercentage,
		execution.StartedAt,
		execution.CompletedAt,
		execution.DurationMs,
		execution.ErrorMessage,
		createdAt,
		now,
	); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetByID fetches an execution record by id.
func (r *ExecutionRepo) GetByID(ctx context.Context, id string) (*model.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	execution, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("execution %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return execution, nil
}

// List returns execution records matching the given filters, newest first.
func (r *ExecutionRepo) List(ctx context.Context, opts core.ExecutionListOptions) ([]*model.Execution, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var conditions []string
	args := []any{limit, offset}
	if opts.SubjectID != "" {
		args = append(args, opts.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if opts.Status != "" {
		if !opts.Status.Valid() {
			return nil, apperrors.ValidationField("status", "unknown execution status")
		}
		args = append(args, string(opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + executionColumns + ` FROM executions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT $1 OFFSET $2"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer func() { _ = rows.Close() }()

	var executions []*model.Execution
	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		executions = append(executions, execution)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return executions, nil
}

// MarkStaleRunning fails executions left pending or running by a previous
// process. Called once at startup; there is no re-execution of stale runs.
func (r *ExecutionRepo) MarkStaleRunning(ctx context.Context, message string) (int64, error) {
	const query = `
		UPDATE executions
		SET status = 'failed',
			error_message = $1,
			completed_at = $2,
			updated_at = $2
		WHERE status IN ('pending', 'running')`

	result, err := r.db.ExecContext(ctx, query, message, r.timeProvider.Now().UTC())
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		r.logger.InfoContext(ctx, "marked stale executions failed", "count", affected)
	}
	return affected, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExecution(row rowScanner) (*model.Execution, error) {
	var (
		execution    model.Execution
		subjectKind  string
		status       string
		parentID     sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
		errorMessage sql.NullString
	)
	if err := row.Scan(
		&execution.ID,
		&subjectKind,
		&execution.SubjectID,
		&execution.SubjectName,
		&parentID,
		&status,
		&execution.CurrentTaskIndex,
		&execution.TotalTasks,
		&execution.ProgressPercentage,
		&startedAt,
		&completedAt,
		&execution.DurationMs,
		&errorMessage,
		&execution.CreatedAt,
		&execution.UpdatedAt,
	); err != nil {
		return nil, err
	}

	execution.SubjectKind = model.SubjectKind(subjectKind)
	execution.Status = model.ExecutionStatus(status)
	if parentID.Valid {
		execution.ParentID = &parentID.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		execution.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		execution.CompletedAt = &t
	}
	if errorMessage.Valid {
		execution.ErrorMessage = &errorMessage.String
	}
	return &execution, nil
}
