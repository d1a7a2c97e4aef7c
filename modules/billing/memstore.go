package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store for tests and local development. Safe for
// concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[uuid.UUID]Account)}
}

// Put inserts or replaces an account. Intended for seeding.
func (s *MemStore) Put(acc Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc.Status == "" {
		acc.Status = StatusNone
	}
	s.accounts[acc.ID] = acc
}

func (s *MemStore) ByID(ctx context.Context, id uuid.UUID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (s *MemStore) ApplySync(ctx context.Context, id uuid.UUID, data SyncData) (Account, bool, error) {
	if err := validateSync(data); err != nil {
		return Account{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, false, ErrNotFound
	}

	periodEnd, stale := guardPeriodEnd(acc, data)

	acc.ProcessorSubscriptionID = data.SubscriptionID
	acc.ProcessorCustomerID = data.CustomerID
	acc.Status = data.Status
	acc.CurrentPeriodEnd = periodEnd
	acc.UpdatedAt = time.Now().UTC()
	s.accounts[id] = acc

	return acc, stale, nil
}

func (s *MemStore) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	if acc.ProcessorSubscriptionID == "" {
		return Account{}, ErrInvalidState
	}

	acc.Status = status
	acc.UpdatedAt = time.Now().UTC()
	s.accounts[id] = acc

	return acc, nil
}

func (s *MemStore) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if acc.ProcessorCustomerID != "" && acc.ProcessorCustomerID != customerID {
		return ErrInvalidState
	}

	acc.ProcessorCustomerID = customerID
	acc.UpdatedAt = time.Now().UTC()
	s.accounts[id] = acc

	return nil
}

// validateSync enforces the invariant that a subscription id is present iff
// the status is not none.
func validateSync(data SyncData) error {
	if (data.SubscriptionID == "") != (data.Status == StatusNone) {
		return ErrInvalidState
	}
	return nil
}

// guardPeriodEnd applies the monotonic period-end rule: for the same
// subscription id the stored value never moves backward or disappears.
// Returns the value to store and whether the incoming one was discarded.
func guardPeriodEnd(acc Account, data SyncData) (*time.Time, bool) {
	if acc.ProcessorSubscriptionID != data.SubscriptionID || acc.CurrentPeriodEnd == nil {
		return data.CurrentPeriodEnd, false
	}
	if data.CurrentPeriodEnd == nil || data.CurrentPeriodEnd.Before(*acc.CurrentPeriodEnd) {
		kept := *acc.CurrentPeriodEnd
		return &kept, true
	}
	return data.CurrentPeriodEnd, false
}
