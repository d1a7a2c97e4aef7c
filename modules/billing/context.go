package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/saasbase/handler"
)

var accountIDKey = handler.NewContextKey("billing:account_id")

// WithAccountID returns a context carrying the authenticated account id.
// The surrounding application's auth middleware is expected to set it.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

// AccountIDFromContext extracts the authenticated account id. Every
// lifecycle and access-policy call takes the id explicitly; this helper only
// bridges the HTTP layer.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return handler.ContextValueOK[uuid.UUID](ctx, accountIDKey)
}
