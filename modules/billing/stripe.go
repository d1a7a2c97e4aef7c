package billing

import (
	"context"
	"errors"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
)

// StripeConfig configures the Stripe processor adapter.
type StripeConfig struct {
	APIKey  string        `env:"STRIPE_API_KEY,required"`
	Timeout time.Duration `env:"STRIPE_TIMEOUT" envDefault:"30s"` // network timeout per call; a timeout is a processor failure
}

// StripeClient implements ProcessorClient against the Stripe API.
type StripeClient struct{}

// NewStripeClient configures the global Stripe backend with an explicit HTTP
// timeout and returns the adapter. Stripe-go keys the backend globally, so
// one adapter per process.
func NewStripeClient(cfg StripeConfig) *StripeClient {
	stripe.Key = cfg.APIKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}))
	return &StripeClient{}
}

func (c *StripeClient) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Metadata: metadata,
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", processorError(err)
	}
	return cust.ID, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(p.CustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if len(p.Metadata) > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: p.Metadata,
		}
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, processorError(err)
	}

	return &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

func (c *StripeClient) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, processorError(err)
	}

	cs := &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}
	if sess.Customer != nil {
		cs.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		cs.SubscriptionID = sess.Subscription.ID
	}
	return cs, nil
}

func (c *StripeClient) RetrieveSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, processorError(err)
	}
	return fromStripeSubscription(sub)
}

func (c *StripeClient) UpdateSubscription(ctx context.Context, subscriptionID string, patch SubscriptionPatch) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	if patch.CancelAtPeriodEnd != nil {
		params.CancelAtPeriodEnd = stripe.Bool(*patch.CancelAtPeriodEnd)
	}
	if patch.PauseCollection != nil {
		if *patch.PauseCollection {
			params.PauseCollection = &stripe.SubscriptionPauseCollectionParams{
				Behavior: stripe.String("mark_uncollectible"),
			}
		} else {
			// Clearing pause_collection requires sending an empty value.
			params.AddExtra("pause_collection", "")
		}
	}

	sub, err := subscription.Update(subscriptionID, params)
	if err != nil {
		return nil, processorError(err)
	}
	return fromStripeSubscription(sub)
}

func (c *StripeClient) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", processorError(err)
	}
	return sess.URL, nil
}

// fromStripeSubscription maps the Stripe subscription onto the local model.
// Unknown statuses are rejected so they never reach the store.
func fromStripeSubscription(sub *stripe.Subscription) (*Subscription, error) {
	status, err := parseStripeStatus(sub.Status)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		ID:     sub.ID,
		Status: status,
	}

	// The Basil API moved the period boundaries onto subscription items.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		if end := sub.Items.Data[0].CurrentPeriodEnd; end > 0 {
			t := time.Unix(end, 0).UTC()
			s.CurrentPeriodEnd = &t
		}
	}

	return s, nil
}

func parseStripeStatus(s stripe.SubscriptionStatus) (Status, error) {
	switch s {
	case stripe.SubscriptionStatusActive:
		return StatusActive, nil
	case stripe.SubscriptionStatusTrialing:
		return StatusTrialing, nil
	case stripe.SubscriptionStatusPaused:
		return StatusPaused, nil
	case stripe.SubscriptionStatusPastDue:
		return StatusPastDue, nil
	case stripe.SubscriptionStatusCanceled:
		return StatusCanceled, nil
	}
	return "", NewUnknownStatusError(string(s))
}

// processorError converts a Stripe failure into a ProcessorError, preferring
// Stripe's own user-facing message when present.
func processorError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return NewProcessorError(stripeErr.Msg, err)
	}
	return NewProcessorError(err.Error(), err)
}
