package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/saasbase/pkg/pg"
)

// PGStore persists account billing state in PostgreSQL. All writes go through
// single statements so the four-field sync stays atomic without explicit
// transactions.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store backed by the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const accountColumns = `
	id,
	email,
	COALESCE(processor_customer_id, ''),
	COALESCE(processor_subscription_id, ''),
	subscription_status,
	current_period_end,
	created_at,
	updated_at`

func (s *PGStore) ByID(ctx context.Context, id uuid.UUID) (Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *PGStore) ApplySync(ctx context.Context, id uuid.UUID, data SyncData) (Account, bool, error) {
	if err := validateSync(data); err != nil {
		return Account{}, false, err
	}

	// The CASE keeps the stored period end when the incoming one would
	// regress it for the same subscription id; the guard lives in the same
	// UPDATE so the whole write stays atomic.
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			processor_subscription_id = NULLIF($2, ''),
			processor_customer_id = NULLIF($3, ''),
			subscription_status = $4,
			current_period_end = CASE
				WHEN COALESCE(processor_subscription_id, '') = $2
					AND current_period_end IS NOT NULL
					AND ($5::timestamptz IS NULL OR $5::timestamptz < current_period_end)
				THEN current_period_end
				ELSE $5::timestamptz
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING`+accountColumns,
		id, data.SubscriptionID, data.CustomerID, data.Status.String(), data.CurrentPeriodEnd,
	)

	acc, err := scanAccount(row)
	if err != nil {
		return Account{}, false, err
	}

	stale := !equalPeriodEnd(acc.CurrentPeriodEnd, data.CurrentPeriodEnd)
	return acc, stale, nil
}

func (s *PGStore) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Account, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			subscription_status = $2,
			updated_at = now()
		WHERE id = $1 AND processor_subscription_id IS NOT NULL
		RETURNING`+accountColumns,
		id, status.String(),
	)

	acc, err := scanAccount(row)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	// Distinguish a missing account from one without a subscription.
	if _, byIDErr := s.ByID(ctx, id); byIDErr != nil {
		return Account{}, byIDErr
	}
	return Account{}, ErrInvalidState
}

func (s *PGStore) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			processor_customer_id = $2,
			updated_at = now()
		WHERE id = $1 AND (processor_customer_id IS NULL OR processor_customer_id = $2)`,
		id, customerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, byIDErr := s.ByID(ctx, id); byIDErr != nil {
		return byIDErr
	}
	return ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		acc       Account
		rawStatus string
		periodEnd *time.Time
	)
	err := row.Scan(
		&acc.ID,
		&acc.Email,
		&acc.ProcessorCustomerID,
		&acc.ProcessorSubscriptionID,
		&rawStatus,
		&periodEnd,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}

	status, err := ParseStatus(rawStatus)
	if err != nil {
		return Account{}, err
	}
	acc.Status = status
	acc.CurrentPeriodEnd = periodEnd

	return acc, nil
}

func equalPeriodEnd(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
