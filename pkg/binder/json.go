package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// JSON creates a binder for application/json request bodies. Requests with a
// different content type report ErrBinderNotApplicable so the binder can be
// combined with Form and Query in a single chain.
//
//	type CreatePostRequest struct {
//		Title string `json:"title"`
//		Body  string `json:"body"`
//	}
//
//	r.Post("/posts", handler.Wrap(h,
//		handler.WithBinders[handler.Context, CreatePostRequest](
//			binder.JSON(),
//			binder.Form(),
//		),
//	))
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mediaType := requestMediaType(r)
		if mediaType != "application/json" {
			return ErrBinderNotApplicable
		}

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		// Reject trailing garbage after the JSON document.
		var extra json.RawMessage
		if err := decoder.Decode(&extra); err != io.EOF {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		return nil
	}
}

// requestMediaType extracts the media type from the Content-Type header,
// ignoring parameters like charset.
func requestMediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType)
}
