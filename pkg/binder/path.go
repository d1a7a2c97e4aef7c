package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path creates a binder for URL path parameters using the provided extractor.
// The extractor is router-specific; with chi pass chi.URLParam.
//
//	type GetPostRequest struct {
//		ID string `path:"id"`
//	}
//
//	r.Get("/posts/{id}", handler.Wrap(h,
//		handler.WithBinders[handler.Context, GetPostRequest](
//			binder.Path(chi.URLParam),
//		),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return fmt.Errorf("%w: target must be a non-nil pointer", ErrFailedToParsePath)
		}

		rv = rv.Elem()
		if rv.Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrFailedToParsePath)
		}

		rt := rv.Type()

		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)

			if !field.CanSet() {
				continue
			}

			paramName, ok := fieldTagName(fieldType, "path")
			if !ok {
				continue
			}

			value := extractor(r, paramName)
			if value == "" {
				continue
			}

			if err := setFieldValue(field, fieldType.Type, []string{value}); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrFailedToParsePath, fieldType.Name, err)
			}
		}

		return nil
	}
}
