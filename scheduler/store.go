package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/meridianbank/provisiond/errors"
)

// Store handles persistence of scheduled jobs
type Store struct {
	db *sql.DB
}

// NewStore creates a new schedule store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Register upserts a schedule row for (jobType, region). The descriptor
// fields (interval, params, state) are replaced; an existing row keeps its
// next_run_at so a restart does not re-trigger every job at once.
func (s *Store) Register(ctx context.Context, jobType, region string, d Descriptor) error {
	params, err := json.Marshal(d.Params)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal params for %s", jobType)
	}

	state := StateActive
	if !d.Enabled {
		state = StatePaused
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (
			id, job_type, region, interval_seconds, params, state,
			next_run_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_type, region) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			params = excluded.params,
			state = excluded.state,
			updated_at = excluded.updated_at
	`,
		uuid.NewString(),
		jobType,
		region,
		int(d.Interval.Seconds()),
		string(params),
		state,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to register schedule for %s/%s", jobType, region)
	}

	return nil
}

// ListDue returns active scheduled jobs with next_run_at <= now, oldest
// first for deterministic execution. Limited to 100 per tick so one
// backlog cannot monopolize the loop.
func (s *Store) ListDue(ctx context.Context, now time.Time) ([]*ScheduledJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_type, region, interval_seconds, params, state,
		       next_run_at, last_run_at, last_execution_id,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE state = ? AND next_run_at <= ?
		ORDER BY next_run_at ASC
		LIMIT 100
	`, StateActive, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due jobs")
	}
	defer rows.Close()

	var jobs []*ScheduledJob
	for rows.Next() {
		job, err := scanScheduledJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ListAll returns every schedule row, ordered for operator display.
func (s *Store) ListAll(ctx context.Context) ([]*ScheduledJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_type, region, interval_seconds, params, state,
		       next_run_at, last_run_at, last_execution_id,
		       created_at, updated_at
		FROM scheduled_jobs
		ORDER BY region, job_type
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled jobs")
	}
	defer rows.Close()

	var jobs []*ScheduledJob
	for rows.Next() {
		job, err := scanScheduledJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateState updates the state of a scheduled job
func (s *Store) UpdateState(ctx context.Context, id, newState string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_jobs
		SET state = ?, updated_at = ?
		WHERE id = ?
	`, newState, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return errors.Wrap(err, "failed to update scheduled job state")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Newf("scheduled job not found: %s", id)
	}

	return nil
}

// UpdateAfterExecution advances a scheduled job past one run.
func (s *Store) UpdateAfterExecution(ctx context.Context, id string, lastRun time.Time, executionID string, nextRun time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_jobs
		SET last_run_at = ?,
		    last_execution_id = ?,
		    next_run_at = ?,
		    updated_at = ?
		WHERE id = ?
	`,
		lastRun.UTC().Format(time.RFC3339),
		executionID,
		nextRun.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		id)
	if err != nil {
		return errors.Wrap(err, "failed to update scheduled job")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Newf("scheduled job not found: %s", id)
	}

	return nil
}

func scanScheduledJob(rows *sql.Rows) (*ScheduledJob, error) {
	var job ScheduledJob
	var params sql.NullString
	var nextRunAt, createdAt, updatedAt string
	var lastRunAt, lastExecutionID sql.NullString

	err := rows.Scan(
		&job.ID,
		&job.JobType,
		&job.Region,
		&job.IntervalSeconds,
		&params,
		&job.State,
		&nextRunAt,
		&lastRunAt,
		&lastExecutionID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan scheduled job")
	}

	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &job.Params); err != nil {
			return nil, errors.Wrapf(err, "failed to parse params for job %s", job.ID)
		}
	}

	job.NextRunAt, err = time.Parse(time.RFC3339, nextRunAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse next_run_at for job %s", job.ID)
	}
	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse created_at for job %s", job.ID)
	}
	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at for job %s", job.ID)
	}

	if lastRunAt.Valid {
		t, err := time.Parse(time.RFC3339, lastRunAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse last_run_at for job %s", job.ID)
		}
		job.LastRunAt = &t
	}
	if lastExecutionID.Valid {
		job.LastExecutionID = lastExecutionID.String
	}

	return &job, nil
}
