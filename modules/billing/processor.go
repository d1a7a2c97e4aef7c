package billing

import (
	"context"
	"time"
)

// CheckoutSession is a processor-hosted flow that collects payment and
// creates a subscription.
type CheckoutSession struct {
	ID             string
	URL            string
	CustomerID     string
	SubscriptionID string
}

// Subscription is the processor-side subscription truth used for
// synchronization into local state.
type Subscription struct {
	ID               string
	Status           Status
	CurrentPeriodEnd *time.Time
}

// SubscriptionPatch describes the only two mutations the lifecycle performs
// against an existing subscription. Nil fields are left untouched.
type SubscriptionPatch struct {
	CancelAtPeriodEnd *bool
	PauseCollection   *bool
}

// CheckoutParams configures a new checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// ProcessorClient is the thin adapter over the external billing API. Pure
// I/O, no local state. Every operation may fail with a *ProcessorError whose
// message is surfaced to the caller unmodified.
type ProcessorClient interface {
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (customerID string, err error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID string, patch SubscriptionPatch) (*Subscription, error)
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (url string, err error)
}
