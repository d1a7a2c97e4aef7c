package post_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/saasbase/modules/billing"
	"github.com/dmitrymomot/saasbase/modules/post"
	"github.com/dmitrymomot/saasbase/pkg/broadcast"
)

func newRouterFixture(t *testing.T) (http.Handler, uuid.UUID) {
	t.Helper()

	store := post.NewMemStore()
	userID := uuid.New()
	store.RegisterAuthor(userID, "author@example.com")

	b := broadcast.NewMemoryBroadcaster[post.Event](4)
	t.Cleanup(func() { _ = b.Close() })

	svc := post.NewService(store, b, slog.New(slog.DiscardHandler))
	return post.NewRouter(svc), userID
}

func TestRouter_CreateAndList(t *testing.T) {
	t.Parallel()

	router, userID := newRouterFixture(t)

	form := url.Values{"title": {"Hello"}, "body": {"World"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = r.WithContext(billing.WithAccountID(r.Context(), userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Hello"`)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "author@example.com")
}

func TestRouter_CreateValidation(t *testing.T) {
	t.Parallel()

	router, userID := newRouterFixture(t)

	form := url.Values{"title": {""}, "body": {""}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = r.WithContext(billing.WithAccountID(r.Context(), userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestRouter_CreateUnauthenticated(t *testing.T) {
	t.Parallel()

	router, _ := newRouterFixture(t)

	form := url.Values{"title": {"Hello"}, "body": {"World"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CreateAsDataStar(t *testing.T) {
	t.Parallel()

	router, userID := newRouterFixture(t)

	form := url.Values{"title": {"Hello"}, "body": {"World"}}
	r := httptest.NewRequest(http.MethodPost, "/?datastar=%7B%7D", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = r.WithContext(billing.WithAccountID(r.Context(), userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "post-card")
}
