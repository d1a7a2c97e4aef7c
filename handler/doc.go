// Package handler provides a type-safe HTTP handler framework with generic
// request binding and pluggable response rendering.
//
// Handlers are plain functions over a typed request value and return a
// Response. Wrap adapts them to http.HandlerFunc, running the configured
// binders and error handler around them:
//
//	h := handler.HandlerFunc[handler.Context, CreatePostRequest](
//		func(ctx handler.Context, req CreatePostRequest) handler.Response {
//			return handler.JSON(map[string]string{"status": "ok"})
//		},
//	)
//	r.Post("/posts", handler.Wrap(h,
//		handler.WithBinders[handler.Context, CreatePostRequest](binder.Form()),
//	))
//
// Response implementations cover JSON envelopes, HTML fragments, redirects,
// and DataStar SSE streams for real-time updates.
package handler
