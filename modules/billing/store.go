package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncData is the four-field synchronization write produced by a confirmed
// processor response. It is applied atomically: all fields or none.
type SyncData struct {
	SubscriptionID   string
	CustomerID       string
	Status           Status
	CurrentPeriodEnd *time.Time
}

// Store persists the billing slice of accounts.
//
// ApplySync must enforce the monotonic period-end guard: for the same
// subscription id, CurrentPeriodEnd never moves backward. A sync carrying a
// regressed period end keeps the stored value and still applies the status;
// the store reports whether the period end was kept via the stale return.
type Store interface {
	// ByID loads the billing slice of an account. Returns ErrNotFound when
	// the account does not exist.
	ByID(ctx context.Context, id uuid.UUID) (Account, error)

	// ApplySync writes all four billing fields in one atomic operation.
	// Returns the updated account and whether the period end from data was
	// discarded as stale.
	ApplySync(ctx context.Context, id uuid.UUID, data SyncData) (Account, bool, error)

	// SetStatus flips the status only, leaving period end and ids untouched.
	// Used by cancel/pause/resume after the processor confirms. Returns
	// ErrInvalidState when the account has no subscription id.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (Account, error)

	// SetCustomerID records the processor customer for the account. The id
	// is set once; subsequent calls with a different value fail with
	// ErrInvalidState.
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
}
