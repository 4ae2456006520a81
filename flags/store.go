package flags

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridianbank/provisiond/errors"
)

// Store handles persistence of job control flags
type Store struct {
	db *sql.DB
}

// NewStore creates a new flag store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get retrieves the flag for an exact (jobName, region) pair.
// Returns (nil, nil) when no row exists so callers can fall back to the
// region-agnostic default row.
func (s *Store) Get(ctx context.Context, jobName, region string) (*Flag, error) {
	query := `
		SELECT job_name, region, enabled, updated_by, updated_at, comment
		FROM job_control
		WHERE job_name = ? AND region = ?
	`

	var flag Flag
	var enabled int
	var updatedAt string
	var comment sql.NullString

	err := s.db.QueryRowContext(ctx, query, jobName, region).Scan(
		&flag.JobName,
		&flag.Region,
		&enabled,
		&flag.UpdatedBy,
		&updatedAt,
		&comment,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get control flag for %s/%s", jobName, region)
	}

	flag.Enabled = enabled != 0
	flag.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse updated_at for flag %s/%s", jobName, region)
	}
	if comment.Valid {
		flag.Comment = comment.String
	}

	return &flag, nil
}

// Upsert writes a flag row, updating in place when a row for
// (jobName, region) already exists. The existence check and write run in
// one transaction so concurrent callers for the same key cannot produce
// duplicate rows.
func (s *Store) Upsert(ctx context.Context, flag *Flag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin flag upsert")
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM job_control WHERE job_name = ? AND region = ?",
		flag.JobName, flag.Region,
	).Scan(&id)

	now := time.Now().UTC().Format(time.RFC3339)
	var comment interface{}
	if flag.Comment != "" {
		comment = flag.Comment
	}

	enabled := 0
	if flag.Enabled {
		enabled = 1
	}

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO job_control (job_name, region, enabled, updated_by, updated_at, comment)
			VALUES (?, ?, ?, ?, ?, ?)
		`, flag.JobName, flag.Region, enabled, flag.UpdatedBy, now, comment)
	case err != nil:
		tx.Rollback()
		return errors.Wrapf(err, "failed to check control flag for %s/%s", flag.JobName, flag.Region)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE job_control
			SET enabled = ?, updated_by = ?, updated_at = ?, comment = ?
			WHERE id = ?
		`, enabled, flag.UpdatedBy, now, comment, id)
	}

	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to write control flag for %s/%s", flag.JobName, flag.Region)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit control flag for %s/%s", flag.JobName, flag.Region)
	}

	return nil
}

// List returns all flags, or flags for one region when region is non-empty.
// Results are ordered by job name then region for stable operator output.
func (s *Store) List(ctx context.Context, region string) ([]*Flag, error) {
	query := `
		SELECT job_name, region, enabled, updated_by, updated_at, comment
		FROM job_control
	`
	var args []interface{}
	if region != RegionAll {
		query += " WHERE region = ? OR region = ''"
		args = append(args, region)
	}
	query += " ORDER BY job_name, region"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list control flags")
	}
	defer rows.Close()

	var result []*Flag
	for rows.Next() {
		var flag Flag
		var enabled int
		var updatedAt string
		var comment sql.NullString

		if err := rows.Scan(&flag.JobName, &flag.Region, &enabled, &flag.UpdatedBy, &updatedAt, &comment); err != nil {
			return nil, errors.Wrap(err, "failed to scan control flag")
		}

		flag.Enabled = enabled != 0
		flag.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse updated_at for flag %s/%s", flag.JobName, flag.Region)
		}
		if comment.Valid {
			flag.Comment = comment.String
		}

		result = append(result, &flag)
	}

	return result, rows.Err()
}
