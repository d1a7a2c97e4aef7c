package billing_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/saasbase/modules/billing"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	args := m.Called(ctx, email, metadata)
	return args.String(0), args.Error(1)
}

func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if sess, ok := args.Get(0).(*billing.CheckoutSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessor) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if sess, ok := args.Get(0).(*billing.CheckoutSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessor) RetrieveSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if sub, ok := args.Get(0).(*billing.Subscription); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessor) UpdateSubscription(ctx context.Context, subscriptionID string, patch billing.SubscriptionPatch) (*billing.Subscription, error) {
	args := m.Called(ctx, subscriptionID, patch)
	if sub, ok := args.Get(0).(*billing.Subscription); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessor) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func testConfig() billing.Config {
	return billing.Config{
		PriceID:         "price_pro",
		SuccessURL:      "https://app.example.com/settings/billing/checkout/success",
		CancelURL:       "https://app.example.com/settings/billing",
		PortalReturnURL: "https://app.example.com/settings/billing",
	}
}

func newTestService(t *testing.T) (*billing.Service, *billing.MemStore, *mockProcessor) {
	t.Helper()
	store := billing.NewMemStore()
	processor := new(mockProcessor)
	svc := billing.NewService(testConfig(), store, processor, slog.New(slog.DiscardHandler))
	return svc, store, processor
}

func activeAccount(store *billing.MemStore, periodEnd *time.Time) billing.Account {
	acc := billing.Account{
		ID:                      uuid.New(),
		Email:                   "user@example.com",
		ProcessorCustomerID:     "cus_1",
		ProcessorSubscriptionID: "sub_1",
		Status:                  billing.StatusActive,
		CurrentPeriodEnd:        periodEnd,
		CreatedAt:               time.Now().Add(-24 * time.Hour),
	}
	store.Put(acc)
	return acc
}

func TestService_StartCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates customer lazily", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)

		processor.On("CreateCustomer", mock.Anything, acc.Email, mock.Anything).Return("cus_new", nil).Once()
		processor.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p billing.CheckoutParams) bool {
			return p.CustomerID == "cus_new" && p.PriceID == "price_pro"
		})).Return(&billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil).Once()

		url, err := svc.StartCheckout(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example.com/cs_1", url)

		got, err := store.ByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "cus_new", got.ProcessorCustomerID)
		processor.AssertExpectations(t)
	})

	t.Run("reuses existing customer", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := activeAccount(store, nil)

		processor.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p billing.CheckoutParams) bool {
			return p.CustomerID == "cus_1"
		})).Return(&billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil).Once()

		_, err := svc.StartCheckout(ctx, acc.ID)
		require.NoError(t, err)

		processor.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("processor error passes through with message", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := activeAccount(store, nil)

		processor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, billing.NewProcessorError("No such price: price_pro", nil)).Once()

		_, err := svc.StartCheckout(ctx, acc.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, billing.ErrProcessor)
		assert.Equal(t, "No such price: price_pro", err.Error())
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()

		svc, _, processor := newTestService(t)

		_, err := svc.StartCheckout(ctx, uuid.New())
		assert.ErrorIs(t, err, billing.ErrNotFound)
		processor.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})
}

func TestService_ConfirmCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("applies atomic four-field sync", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)
		periodEnd := time.Now().Add(14 * 24 * time.Hour)

		processor.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&billing.CheckoutSession{ID: "cs_1", CustomerID: "cus_1", SubscriptionID: "sub_1"}, nil).Once()
		processor.On("RetrieveSubscription", mock.Anything, "sub_1").
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusTrialing, CurrentPeriodEnd: &periodEnd}, nil).Once()

		updated, err := svc.ConfirmCheckout(ctx, acc.ID, "cs_1")
		require.NoError(t, err)
		assert.Equal(t, "sub_1", updated.ProcessorSubscriptionID)
		assert.Equal(t, "cus_1", updated.ProcessorCustomerID)
		assert.Equal(t, billing.StatusTrialing, updated.Status)

		snap := billing.BuildSnapshot(updated, time.Now())
		require.NotNil(t, snap)
		assert.True(t, snap.TrialActive)
		require.NotNil(t, snap.DaysUntilTrialEnds)
		assert.Equal(t, 14, *snap.DaysUntilTrialEnds)
	})

	t.Run("unknown processor status writes nothing", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)

		processor.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&billing.CheckoutSession{ID: "cs_1", CustomerID: "cus_1", SubscriptionID: "sub_1"}, nil).Once()
		processor.On("RetrieveSubscription", mock.Anything, "sub_1").
			Return(nil, billing.NewUnknownStatusError("incomplete")).Once()

		_, err := svc.ConfirmCheckout(ctx, acc.ID, "cs_1")
		require.ErrorIs(t, err, billing.ErrUnknownStatus)

		got, err := store.ByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Empty(t, got.ProcessorSubscriptionID)
		assert.Empty(t, got.ProcessorCustomerID)
		assert.Equal(t, billing.StatusNone, got.Status)
		assert.Nil(t, got.CurrentPeriodEnd)
	})

	t.Run("session without subscription", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)

		processor.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&billing.CheckoutSession{ID: "cs_1", CustomerID: "cus_1"}, nil).Once()

		_, err := svc.ConfirmCheckout(ctx, acc.ID, "cs_1")
		assert.ErrorIs(t, err, billing.ErrCheckoutIncomplete)
		processor.AssertNotCalled(t, "RetrieveSubscription", mock.Anything, mock.Anything)
	})

	t.Run("regressed period end is discarded", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)
		t1 := time.Now().Add(30 * 24 * time.Hour)
		t2 := t1.Add(-10 * 24 * time.Hour)

		processor.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&billing.CheckoutSession{ID: "cs_1", CustomerID: "cus_1", SubscriptionID: "sub_1"}, nil).Twice()
		processor.On("RetrieveSubscription", mock.Anything, "sub_1").
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &t1}, nil).Once()

		_, err := svc.ConfirmCheckout(ctx, acc.ID, "cs_1")
		require.NoError(t, err)

		processor.On("RetrieveSubscription", mock.Anything, "sub_1").
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &t2}, nil).Once()

		updated, err := svc.ConfirmCheckout(ctx, acc.ID, "cs_1")
		require.NoError(t, err)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.True(t, updated.CurrentPeriodEnd.Equal(t1), "period end must not regress")
	})
}

func TestService_Transitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cancel without subscription makes no processor call", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)

		_, err := svc.Cancel(ctx, acc.ID)
		assert.ErrorIs(t, err, billing.ErrNoSubscription)
		processor.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancel keeps period end so access continues", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.MatchedBy(func(p billing.SubscriptionPatch) bool {
			return p.CancelAtPeriodEnd != nil && *p.CancelAtPeriodEnd && p.PauseCollection == nil
		})).Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Once()

		updated, err := svc.Cancel(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusCanceled, updated.Status)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.True(t, updated.CurrentPeriodEnd.Equal(periodEnd))
		assert.True(t, billing.HasAccess(updated, time.Now()), "canceled keeps access until period end")
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.Anything).
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Twice()

		first, err := svc.Cancel(ctx, acc.ID)
		require.NoError(t, err)
		second, err := svc.Cancel(ctx, acc.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Status, second.Status)
		assert.True(t, first.CurrentPeriodEnd.Equal(*second.CurrentPeriodEnd))
		processor.AssertExpectations(t)
	})

	t.Run("pause removes access immediately", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.MatchedBy(func(p billing.SubscriptionPatch) bool {
			return p.PauseCollection != nil && *p.PauseCollection
		})).Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Once()

		updated, err := svc.Pause(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusPaused, updated.Status)
		assert.False(t, billing.HasAccess(updated, time.Now()))
	})

	t.Run("resume restores active status", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.Anything).
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Twice()

		_, err := svc.Pause(ctx, acc.ID)
		require.NoError(t, err)

		updated, err := svc.Resume(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusActive, updated.Status)
		assert.True(t, billing.HasAccess(updated, time.Now()))
	})

	t.Run("processor failure leaves local state unchanged", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.Anything).
			Return(nil, billing.NewProcessorError("rate limited", nil)).Once()

		_, err := svc.Pause(ctx, acc.ID)
		require.ErrorIs(t, err, billing.ErrProcessor)

		got, err := store.ByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.StatusActive, got.Status)
	})
}

func TestService_PortalURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires customer", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := seedAccount(store)

		_, err := svc.PortalURL(ctx, acc.ID)
		assert.ErrorIs(t, err, billing.ErrNoCustomer)
		processor.AssertNotCalled(t, "CreateBillingPortalSession", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns portal url", func(t *testing.T) {
		t.Parallel()

		svc, store, processor := newTestService(t)
		acc := activeAccount(store, nil)

		processor.On("CreateBillingPortalSession", mock.Anything, "cus_1", testConfig().PortalReturnURL).
			Return("https://billing.example.com/p/1", nil).Once()

		url, err := svc.PortalURL(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://billing.example.com/p/1", url)
	})
}
