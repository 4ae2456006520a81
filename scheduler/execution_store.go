package scheduler

import (
	"context"
	"database/sql"

	"github.com/meridianbank/provisiond/errors"
)

// ExecutionStore handles persistence of execution history
type ExecutionStore struct {
	db *sql.DB
}

// NewExecutionStore creates a new execution store
func NewExecutionStore(db *sql.DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// Create inserts a new execution record
func (s *ExecutionStore) Create(ctx context.Context, e *Execution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_executions (
			id, scheduled_job_id, job_type, region, status,
			requested, succeeded, failed,
			started_at, completed_at, duration_ms, error_message,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.ScheduledJobID,
		e.JobType,
		e.Region,
		e.Status,
		e.Requested,
		e.Succeeded,
		e.Failed,
		e.StartedAt,
		e.CompletedAt,
		e.DurationMs,
		e.ErrorMessage,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to create execution record %s", e.ID)
	}
	return nil
}

// Update writes an execution record's final state
func (s *ExecutionStore) Update(ctx context.Context, e *Execution) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE job_executions
		SET status = ?,
		    requested = ?,
		    succeeded = ?,
		    failed = ?,
		    completed_at = ?,
		    duration_ms = ?,
		    error_message = ?,
		    updated_at = ?
		WHERE id = ?
	`,
		e.Status,
		e.Requested,
		e.Succeeded,
		e.Failed,
		e.CompletedAt,
		e.DurationMs,
		e.ErrorMessage,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update execution record %s", e.ID)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Newf("execution record not found: %s", e.ID)
	}

	return nil
}

// ListRecent returns the most recent executions for a scheduled job,
// or across all jobs when scheduledJobID is empty.
func (s *ExecutionStore) ListRecent(ctx context.Context, scheduledJobID string, limit int) ([]*Execution, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scheduled_job_id, job_type, region, status,
		       requested, succeeded, failed,
		       started_at, completed_at, duration_ms, error_message,
		       created_at, updated_at
		FROM job_executions
		WHERE (? = '' OR scheduled_job_id = ?)
		ORDER BY started_at DESC
		LIMIT ?
	`, scheduledJobID, scheduledJobID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list executions")
	}
	defer rows.Close()

	var executions []*Execution
	for rows.Next() {
		var e Execution
		var scheduledJob, completedAt, errorMessage sql.NullString
		var durationMs sql.NullInt64

		err := rows.Scan(
			&e.ID,
			&scheduledJob,
			&e.JobType,
			&e.Region,
			&e.Status,
			&e.Requested,
			&e.Succeeded,
			&e.Failed,
			&e.StartedAt,
			&completedAt,
			&durationMs,
			&errorMessage,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan execution")
		}

		if scheduledJob.Valid {
			e.ScheduledJobID = scheduledJob.String
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.String
		}
		if durationMs.Valid {
			d := int(durationMs.Int64)
			e.DurationMs = &d
		}
		if errorMessage.Valid {
			e.ErrorMessage = &errorMessage.String
		}

		executions = append(executions, &e)
	}

	return executions, rows.Err()
}
