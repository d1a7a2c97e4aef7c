package binder

import "errors"

// Common binding errors
var (
	// ErrBinderNotApplicable signals the binder does not handle this request
	// shape (wrong content type, no matching tags). The handler framework
	// skips such binders instead of failing the request.
	ErrBinderNotApplicable = errors.New("binder not applicable to this request")

	ErrFailedToParseJSON  = errors.New("failed to parse JSON request body")
	ErrFailedToParseForm  = errors.New("failed to parse form data")
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")
	ErrFailedToParsePath  = errors.New("failed to parse path parameters")
)
