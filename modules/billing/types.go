package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of subscription states mirrored from the payment
// processor. StatusNone means no subscription object exists locally.
type Status string

const (
	StatusNone     Status = "none"
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPaused   Status = "paused"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// ParseStatus maps a processor status string onto the local enum. Statuses
// outside the known vocabulary are rejected with ErrUnknownStatus instead of
// being stored uninterpreted.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNone, StatusActive, StatusTrialing, StatusPaused, StatusPastDue, StatusCanceled:
		return Status(s), nil
	}
	return "", NewUnknownStatusError(s)
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Account is the billing-relevant slice of a user. Local billing state is a
// cache of the processor's last known truth; it is written only after a
// confirmed processor response.
type Account struct {
	ID                      uuid.UUID
	Email                   string
	ProcessorCustomerID     string // set once, never cleared by normal flows
	ProcessorSubscriptionID string // present iff Status != StatusNone
	Status                  Status
	CurrentPeriodEnd        *time.Time // access-until boundary, meaningful after cancellation
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// HasSubscription reports whether the account ever started a subscription.
func (a Account) HasSubscription() bool {
	return a.ProcessorSubscriptionID != ""
}

// HasCustomer reports whether a processor customer exists for the account.
func (a Account) HasCustomer() bool {
	return a.ProcessorCustomerID != ""
}
