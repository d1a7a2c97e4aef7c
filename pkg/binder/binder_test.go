package binder_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/saasbase/pkg/binder"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	type request struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	t.Run("binds valid body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hello","count":3}`))
		r.Header.Set("Content-Type", "application/json")

		var req request
		require.NoError(t, binder.JSON()(r, &req))
		assert.Equal(t, "hello", req.Title)
		assert.Equal(t, 3, req.Count)
	})

	t.Run("not applicable for other content types", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=hello"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var req request
		assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrBinderNotApplicable)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","bogus":true}`))
		r.Header.Set("Content-Type", "application/json")

		var req request
		assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrFailedToParseJSON)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		r.Header.Set("Content-Type", "application/json")

		var req request
		assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrFailedToParseJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}{"title":"y"}`))
		r.Header.Set("Content-Type", "application/json")

		var req request
		assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrFailedToParseJSON)
	})
}

func TestForm(t *testing.T) {
	t.Parallel()

	type request struct {
		Title    string   `form:"title"`
		Tags     []string `form:"tags"`
		Featured bool     `form:"featured"`
		Ignored  string   `form:"-"`
	}

	t.Run("binds urlencoded body", func(t *testing.T) {
		t.Parallel()

		form := url.Values{
			"title":    {"hello"},
			"tags":     {"go", "web"},
			"featured": {"on"},
		}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var req request
		require.NoError(t, binder.Form()(r, &req))
		assert.Equal(t, "hello", req.Title)
		assert.Equal(t, []string{"go", "web"}, req.Tags)
		assert.True(t, req.Featured)
	})

	t.Run("not applicable for JSON", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")

		var req request
		assert.ErrorIs(t, binder.Form()(r, &req), binder.ErrBinderNotApplicable)
	})

	t.Run("invalid field value", func(t *testing.T) {
		t.Parallel()

		type countReq struct {
			Count int `form:"count"`
		}

		form := url.Values{"count": {"abc"}}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var req countReq
		assert.ErrorIs(t, binder.Form()(r, &req), binder.ErrFailedToParseForm)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	type request struct {
		Page   int      `query:"page"`
		Tags   []string `query:"tags"`
		Active *bool    `query:"active"`
	}

	t.Run("binds query parameters", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?page=2&tags=go,web&active=true", nil)

		var req request
		require.NoError(t, binder.Query()(r, &req))
		assert.Equal(t, 2, req.Page)
		assert.Equal(t, []string{"go", "web"}, req.Tags)
		require.NotNil(t, req.Active)
		assert.True(t, *req.Active)
	})

	t.Run("missing params leave zero values", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)

		var req request
		require.NoError(t, binder.Query()(r, &req))
		assert.Zero(t, req.Page)
		assert.Nil(t, req.Active)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	type request struct {
		ID string `path:"id"`
	}

	extractor := func(r *http.Request, name string) string {
		if name == "id" {
			return "abc-123"
		}
		return ""
	}

	t.Run("binds path parameter", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts/abc-123", nil)

		var req request
		require.NoError(t, binder.Path(extractor)(r, &req))
		assert.Equal(t, "abc-123", req.ID)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/posts/abc-123", nil)

		var req request
		assert.ErrorIs(t, binder.Path(nil)(r, &req), binder.ErrFailedToParsePath)
	})
}
