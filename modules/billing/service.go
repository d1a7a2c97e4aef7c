package billing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/saasbase/pkg/statemachine"
)

// Config holds the checkout and portal settings for the single-plan model.
type Config struct {
	PriceID         string `env:"BILLING_PRICE_ID,required"`          // processor price for the Pro plan
	SuccessURL      string `env:"BILLING_SUCCESS_URL,required"`       // checkout success callback, receives session_id
	CancelURL       string `env:"BILLING_CANCEL_URL,required"`        // checkout abandonment redirect
	PortalReturnURL string `env:"BILLING_PORTAL_RETURN_URL,required"` // return target from the billing portal
}

// Lifecycle events fired against the transition rules.
const (
	eventCancel = statemachine.StringEvent("cancel")
	eventPause  = statemachine.StringEvent("pause")
	eventResume = statemachine.StringEvent("resume")
)

func state(s Status) statemachine.StringState {
	return statemachine.StringState(s)
}

// transitionRules: every event is legal from any state that has
// a subscription, and repeating an event lands in the same target, so Cancel
// or Pause twice in a row stays idempotent.
var transitionRules = func() *statemachine.Rules {
	withSubscription := []Status{StatusActive, StatusTrialing, StatusPastDue, StatusPaused, StatusCanceled}
	targets := map[statemachine.StringEvent]Status{
		eventCancel: StatusCanceled,
		eventPause:  StatusPaused,
		eventResume: StatusActive,
	}

	var transitions []statemachine.Transition
	for event, to := range targets {
		for _, from := range withSubscription {
			transitions = append(transitions, statemachine.Transition{
				From:  state(from),
				To:    state(to),
				Event: event,
			})
		}
	}
	return statemachine.MustRules(transitions...)
}()

// Service is the subscription lifecycle controller. It orchestrates the user
// initiated transitions by calling the processor first and writing local
// state only after a confirmed response. Local state is a cache of processor
// truth, never the source of it.
type Service struct {
	cfg       Config
	store     Store
	processor ProcessorClient
	log       *slog.Logger

	// Transitions for the same account are serialized to keep the
	// multi-field sync write free of lost-update races.
	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// NewService creates the lifecycle controller. Panics on nil dependencies to
// fail fast during initialization.
func NewService(cfg Config, store Store, processor ProcessorClient, log *slog.Logger) *Service {
	if store == nil {
		panic("billing: Store is required")
	}
	if processor == nil {
		panic("billing: ProcessorClient is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		processor: processor,
		log:       log,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) lockAccount(id uuid.UUID) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Account loads the billing slice of an account.
func (s *Service) Account(ctx context.Context, accountID uuid.UUID) (Account, error) {
	return s.store.ByID(ctx, accountID)
}

// StartCheckout creates a checkout session for the single plan and returns
// the processor-hosted URL. A processor customer is created lazily on first
// checkout. No local billing state changes until the success callback.
func (s *Service) StartCheckout(ctx context.Context, accountID uuid.UUID) (string, error) {
	unlock := s.lockAccount(accountID)
	defer unlock()

	acc, err := s.store.ByID(ctx, accountID)
	if err != nil {
		return "", err
	}

	customerID := acc.ProcessorCustomerID
	if customerID == "" {
		customerID, err = s.processor.CreateCustomer(ctx, acc.Email, map[string]string{
			"account_id": acc.ID.String(),
		})
		if err != nil {
			return "", err
		}
		// The customer id is recorded immediately; it carries no
		// subscription state and is set once by design.
		if err := s.store.SetCustomerID(ctx, accountID, customerID); err != nil {
			return "", err
		}
	}

	sess, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    s.cfg.PriceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		Metadata:   map[string]string{"account_id": acc.ID.String()},
	})
	if err != nil {
		return "", err
	}

	return sess.URL, nil
}

// ConfirmCheckout handles the checkout success callback: it fetches the
// session, then the referenced subscription, and applies the four-field sync
// in one atomic write. A stale period end in the response is logged and
// discarded by the store; the confirmation itself still succeeds.
func (s *Service) ConfirmCheckout(ctx context.Context, accountID uuid.UUID, sessionID string) (Account, error) {
	unlock := s.lockAccount(accountID)
	defer unlock()

	if _, err := s.store.ByID(ctx, accountID); err != nil {
		return Account{}, err
	}

	sess, err := s.processor.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return Account{}, err
	}
	if sess.SubscriptionID == "" {
		return Account{}, ErrCheckoutIncomplete
	}

	sub, err := s.processor.RetrieveSubscription(ctx, sess.SubscriptionID)
	if err != nil {
		return Account{}, err
	}

	acc, stale, err := s.store.ApplySync(ctx, accountID, SyncData{
		SubscriptionID:   sub.ID,
		CustomerID:       sess.CustomerID,
		Status:           sub.Status,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	})
	if err != nil {
		return Account{}, err
	}
	if stale {
		s.log.WarnContext(ctx, "discarded regressing period end from checkout sync",
			slog.String("account_id", accountID.String()),
			slog.String("subscription_id", sub.ID),
		)
	}

	return acc, nil
}

// Cancel marks the subscription cancel-at-period-end at the processor, then
// flips the local status to canceled. Period end is left untouched so access
// continues until the paid period runs out. Safe to invoke repeatedly.
func (s *Service) Cancel(ctx context.Context, accountID uuid.UUID) (Account, error) {
	return s.transition(ctx, accountID, eventCancel, SubscriptionPatch{
		CancelAtPeriodEnd: boolPtr(true),
	})
}

// Pause enables pause-collection at the processor, then flips the local
// status to paused. Paused accounts lose feature access immediately.
func (s *Service) Pause(ctx context.Context, accountID uuid.UUID) (Account, error) {
	return s.transition(ctx, accountID, eventPause, SubscriptionPatch{
		PauseCollection: boolPtr(true),
	})
}

// Resume disables pause-collection at the processor, then flips the local
// status back to active.
func (s *Service) Resume(ctx context.Context, accountID uuid.UUID) (Account, error) {
	return s.transition(ctx, accountID, eventResume, SubscriptionPatch{
		PauseCollection: boolPtr(false),
	})
}

// transition runs one guarded lifecycle step: local precondition check,
// processor round-trip, local status flip only after the processor confirms.
func (s *Service) transition(ctx context.Context, accountID uuid.UUID, event statemachine.StringEvent, patch SubscriptionPatch) (Account, error) {
	unlock := s.lockAccount(accountID)
	defer unlock()

	acc, err := s.store.ByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	if !acc.HasSubscription() {
		return Account{}, ErrNoSubscription
	}

	target, err := transitionRules.Target(state(acc.Status), event)
	if err != nil {
		return Account{}, err
	}

	if _, err := s.processor.UpdateSubscription(ctx, acc.ProcessorSubscriptionID, patch); err != nil {
		return Account{}, err
	}

	updated, err := s.store.SetStatus(ctx, accountID, Status(target.Name()))
	if err != nil {
		return Account{}, err
	}

	s.log.InfoContext(ctx, "subscription transition applied",
		slog.String("account_id", accountID.String()),
		slog.String("event", event.Name()),
		slog.String("from", acc.Status.String()),
		slog.String("to", updated.Status.String()),
	)

	return updated, nil
}

// PortalURL creates a billing portal session for self-service payment and
// plan management. Requires an existing processor customer.
func (s *Service) PortalURL(ctx context.Context, accountID uuid.UUID) (string, error) {
	acc, err := s.store.ByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if !acc.HasCustomer() {
		return "", ErrNoCustomer
	}

	return s.processor.CreateBillingPortalSession(ctx, acc.ProcessorCustomerID, s.cfg.PortalReturnURL)
}

func boolPtr(b bool) *bool {
	return &b
}
