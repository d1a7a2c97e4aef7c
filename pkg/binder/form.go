package binder

import (
	"fmt"
	"net/http"
	"strings"
)

// defaultMaxMemory bounds in-memory buffering when parsing multipart forms.
const defaultMaxMemory = 10 << 20 // 10 MB

// Form creates a binder for application/x-www-form-urlencoded and
// multipart/form-data request bodies. Other content types report
// ErrBinderNotApplicable.
//
// Struct tags:
//   - `form:"name"` binds to form field "name"
//   - `form:"-"` skips the field
//
// Supported field types are basic types, slices of basic types for
// multi-value fields, and pointers for optional fields.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mediaType := requestMediaType(r)

		switch {
		case mediaType == "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
			}
			return bindToStruct(v, "form", r.Form, ErrFailedToParseForm)

		case strings.HasPrefix(mediaType, "multipart/form-data"):
			if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
			}
			values := map[string][]string{}
			if r.MultipartForm != nil {
				values = r.MultipartForm.Value
			}
			return bindToStruct(v, "form", values, ErrFailedToParseForm)

		default:
			return ErrBinderNotApplicable
		}
	}
}
