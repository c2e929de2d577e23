package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const taskColumns = `id, file_id, page_ids, interval_seconds, last_run, next_run,
	last_error, last_success, last_job_id, enabled`

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM scheduled_tasks WHERE id = ?", taskID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// ListTasks returns all scheduled tasks ordered by id.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM scheduled_tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing scheduled tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.ScheduledTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// SaveTask upserts a task by ID.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	pageIDs := task.PageIDs
	if pageIDs == nil {
		pageIDs = []string{}
	}
	encoded, err := json.Marshal(pageIDs)
	if err != nil {
		return fmt.Errorf("encoding page ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_id = excluded.file_id,
			page_ids = excluded.page_ids,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			last_job_id = excluded.last_job_id,
			enabled = excluded.enabled
	`,
		task.ID,
		task.FileID,
		string(encoded),
		int64(task.Interval/time.Second),
		sqlTime(task.LastRun),
		sqlTime(task.NextRun),
		sqlText(task.LastError),
		sqlTime(task.LastSuccess),
		sqlText(task.LastJobID),
		sqlBool(task.Enabled),
	)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a task. Its history is kept until pruned.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}

// RecordResult appends one run to a task's history.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO task_results (task_id, started_at, ended_at, success, error, assets_queued, job_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		result.TaskID,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.EndedAt.UTC().Format(time.RFC3339Nano),
		sqlBool(result.Success),
		sqlText(result.Error),
		result.AssetsQueued,
		sqlText(result.JobID),
	)
	if err != nil {
		return fmt.Errorf("recording result of %s: %w", result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit results for a task, most recent first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT task_id, started_at, ended_at, success, error, assets_queued, job_id
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history of %s: %w", taskID, err)
	}
	defer rows.Close()

	results := []domain.TaskResult{}
	for rows.Next() {
		var r domain.TaskResult
		var started, ended string
		var success int
		var errMsg, jobID sql.NullString
		if err := rows.Scan(&r.TaskID, &started, &ended, &success, &errMsg, &r.AssetsQueued, &jobID); err != nil {
			return nil, fmt.Errorf("scanning task result: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
		r.Success = success == 1
		r.Error = errMsg.String
		r.JobID = jobID.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneHistory keeps the most recent keep results of every task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS pos
				FROM task_results
			) WHERE pos > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row selected with taskColumns. A missing row is
// returned as sql.ErrNoRows unwrapped.
func scanTask(row scanner) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var pageIDs string
	var seconds int64
	var lastRun, nextRun, lastErr, lastOK, lastJobID sql.NullString
	var enabled int
	err := row.Scan(&task.ID, &task.FileID, &pageIDs, &seconds,
		&lastRun, &nextRun, &lastErr, &lastOK, &lastJobID, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	if err := json.Unmarshal([]byte(pageIDs), &task.PageIDs); err != nil {
		return nil, fmt.Errorf("decoding page ids of %s: %w", task.ID, err)
	}
	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = timeFromSQL(lastRun)
	task.NextRun = timeFromSQL(nextRun)
	task.LastError = lastErr.String
	task.LastSuccess = timeFromSQL(lastOK)
	task.LastJobID = lastJobID.String
	task.Enabled = enabled == 1
	return &task, nil
}

// sqlTime stores the zero time as NULL.
func sqlTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// timeFromSQL reads a column written by sqlTime. NULL and unparsable
// values become the zero time.
func timeFromSQL(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sqlText stores the empty string as NULL.
func sqlText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sqlBool(b bool) int {
	if b {
		return 1
	}
	return 0
}
