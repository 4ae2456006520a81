package accounts

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridianbank/provisiond/errors"
)

// Record is one reserved account row. Status starts at NEW and is flipped
// by the consuming test suites, not by provisiond.
type Record struct {
	AccountNumber string
	ProductCode   string
	CustomerType  string
	Region        string
	Source        string
	Status        string
	CreatedAt     time.Time
}

// StatusNew marks a reserved account that no test has consumed yet.
const StatusNew = "NEW"

// Store handles persistence of reserved account records
type Store struct {
	db *sql.DB
}

// NewStore creates a new reserved account store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert persists a created account record in status NEW.
func (s *Store) Insert(ctx context.Context, ref EntityRef, customerType, region, source string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reserved_accounts (account_number, product_code, customer_type, region, source, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ref.AccountNumber,
		ref.ProductCode,
		customerType,
		region,
		source,
		StatusNew,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to insert reserved account %s", ref.AccountNumber)
	}
	return nil
}

// CountActive counts NEW reserved accounts for a
// (account type, customer type, region, source) combination.
// Implements quota.ActiveCounter.
func (s *Store) CountActive(ctx context.Context, accountType, customerType, region, source string) (int, error) {
	code, err := ProductCode(accountType, customerType)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reserved_accounts
		WHERE product_code = ? AND region = ? AND source = ? AND status = ?
	`, code, region, source, StatusNew).Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count active %s accounts in %s", accountType, region)
	}

	return count, nil
}
