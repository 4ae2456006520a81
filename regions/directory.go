// Package regions resolves the active deployment regions that scope
// quotas, flags, and provisioning targets.
package regions

import (
	"context"
	"database/sql"

	"github.com/meridianbank/provisiond/errors"
)

// Directory lists the active regions. The scheduler registers its job
// catalog for every region the directory returns.
type Directory interface {
	ListRegions(ctx context.Context) ([]string, error)
}

// Store is the database-backed region directory.
type Store struct {
	db *sql.DB
}

// NewStore creates a region directory over the regions table
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListRegions returns the active region codes, ordered for deterministic
// catalog registration.
func (s *Store) ListRegions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code FROM regions WHERE active = 1 ORDER BY code")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list regions")
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, errors.Wrap(err, "failed to scan region")
		}
		result = append(result, code)
	}

	return result, rows.Err()
}
