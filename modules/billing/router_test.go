package billing_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/saasbase/modules/billing"
)

func newRouterFixture(t *testing.T) (http.Handler, *billing.MemStore, *mockProcessor) {
	t.Helper()
	store := billing.NewMemStore()
	processor := new(mockProcessor)
	svc := billing.NewService(testConfig(), store, processor, slog.New(slog.DiscardHandler))
	return billing.NewRouter(svc), store, processor
}

func doRequest(t *testing.T, h http.Handler, method, path string, accountID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	if accountID != nil {
		r = r.WithContext(billing.WithAccountID(r.Context(), *accountID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRouter_Overview(t *testing.T) {
	t.Parallel()

	t.Run("no subscription", func(t *testing.T) {
		t.Parallel()

		router, store, _ := newRouterFixture(t)
		acc := seedAccount(store)

		w := doRequest(t, router, http.MethodGet, "/", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"has_subscription":false,"can_access_features":false,"subscription":null}`, w.Body.String())
	})

	t.Run("active subscription", func(t *testing.T) {
		t.Parallel()

		router, store, _ := newRouterFixture(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		w := doRequest(t, router, http.MethodGet, "/", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"has_subscription":true`)
		assert.Contains(t, w.Body.String(), `"can_access_features":true`)
		assert.Contains(t, w.Body.String(), `"plan_name":"Pro Plan"`)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		router, _, _ := newRouterFixture(t)

		w := doRequest(t, router, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouter_Checkout(t *testing.T) {
	t.Parallel()

	t.Run("returns checkout url", func(t *testing.T) {
		t.Parallel()

		router, store, processor := newRouterFixture(t)
		acc := activeAccount(store, nil)

		processor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(&billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil).Once()

		w := doRequest(t, router, http.MethodPost, "/checkout", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"checkout_url":"https://checkout.example.com/cs_1"}`, w.Body.String())
	})

	t.Run("processor failure is 422 with message", func(t *testing.T) {
		t.Parallel()

		router, store, processor := newRouterFixture(t)
		acc := activeAccount(store, nil)

		processor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, billing.NewProcessorError("No such price: price_pro", nil)).Once()

		w := doRequest(t, router, http.MethodPost, "/checkout", &acc.ID)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error":"No such price: price_pro"}`, w.Body.String())
	})

	t.Run("confirm requires session id", func(t *testing.T) {
		t.Parallel()

		router, store, _ := newRouterFixture(t)
		acc := seedAccount(store)

		w := doRequest(t, router, http.MethodGet, "/checkout/success", &acc.ID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("confirm success", func(t *testing.T) {
		t.Parallel()

		router, store, processor := newRouterFixture(t)
		acc := seedAccount(store)
		periodEnd := time.Now().Add(30 * 24 * time.Hour)

		processor.On("RetrieveCheckoutSession", mock.Anything, "cs_1").
			Return(&billing.CheckoutSession{ID: "cs_1", CustomerID: "cus_1", SubscriptionID: "sub_1"}, nil).Once()
		processor.On("RetrieveSubscription", mock.Anything, "sub_1").
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Once()

		w := doRequest(t, router, http.MethodGet, "/checkout/success?session_id=cs_1", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Subscription activated")
	})
}

func TestRouter_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("cancel without subscription is 404", func(t *testing.T) {
		t.Parallel()

		router, store, _ := newRouterFixture(t)
		acc := seedAccount(store)

		w := doRequest(t, router, http.MethodPatch, "/cancel", &acc.ID)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"no subscription found"}`, w.Body.String())
	})

	t.Run("pause succeeds", func(t *testing.T) {
		t.Parallel()

		router, store, processor := newRouterFixture(t)
		periodEnd := time.Now().Add(10 * 24 * time.Hour)
		acc := activeAccount(store, &periodEnd)

		processor.On("UpdateSubscription", mock.Anything, "sub_1", mock.Anything).
			Return(&billing.Subscription{ID: "sub_1", Status: billing.StatusActive, CurrentPeriodEnd: &periodEnd}, nil).Once()

		w := doRequest(t, router, http.MethodPatch, "/pause", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "paused")
	})

	t.Run("manage without customer is 404", func(t *testing.T) {
		t.Parallel()

		router, store, _ := newRouterFixture(t)
		acc := seedAccount(store)

		w := doRequest(t, router, http.MethodPost, "/manage", &acc.ID)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"no billing customer found"}`, w.Body.String())
	})

	t.Run("manage returns portal url", func(t *testing.T) {
		t.Parallel()

		router, store, processor := newRouterFixture(t)
		acc := activeAccount(store, nil)

		processor.On("CreateBillingPortalSession", mock.Anything, "cus_1", mock.Anything).
			Return("https://billing.example.com/p/1", nil).Once()

		w := doRequest(t, router, http.MethodPost, "/manage", &acc.ID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"management_url":"https://billing.example.com/p/1"}`, w.Body.String())
	})
}
