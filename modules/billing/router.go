package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/saasbase/handler"
	"github.com/dmitrymomot/saasbase/pkg/binder"
)

// NewRouter mounts the billing HTTP surface. Intended to be mounted under
// /settings/billing by the application router.
//
// Status codes are part of the contract: missing-precondition guards map to
// 404, processor failures to 422 with the processor message passed through
// unmodified, everything else to 500.
func NewRouter(svc *Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(overviewHandler(svc)))
	r.Post("/checkout", handler.Wrap(startCheckoutHandler(svc)))
	r.Get("/checkout/success", handler.Wrap(confirmCheckoutHandler(svc),
		handler.WithBinders[handler.Context, confirmCheckoutRequest](binder.Query()),
	))
	r.Post("/manage", handler.Wrap(manageHandler(svc)))
	r.Patch("/cancel", handler.Wrap(transitionHandler(svc, (*Service).Cancel, "Subscription canceled. You keep access until the end of the paid period.")))
	r.Patch("/pause", handler.Wrap(transitionHandler(svc, (*Service).Pause, "Subscription paused.")))
	r.Patch("/resume", handler.Wrap(transitionHandler(svc, (*Service).Resume, "Subscription resumed.")))

	return r
}

type emptyRequest struct{}

type confirmCheckoutRequest struct {
	SessionID string `query:"session_id"`
}

// overview is the read model exposed to the presentation layer.
type overview struct {
	HasSubscription   bool      `json:"has_subscription"`
	CanAccessFeatures bool      `json:"can_access_features"`
	Subscription      *Snapshot `json:"subscription"`
}

func overviewHandler(svc *Service) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		accountID, ok := AccountIDFromContext(ctx)
		if !ok {
			return errorResponse(handler.ErrUnauthorized)
		}

		acc, err := svc.Account(ctx, accountID)
		if err != nil {
			return errorResponse(err)
		}

		now := time.Now()
		return respond(http.StatusOK, overview{
			HasSubscription:   acc.HasSubscription(),
			CanAccessFeatures: HasAccess(acc, now),
			Subscription:      BuildSnapshot(acc, now),
		})
	}
}

func startCheckoutHandler(svc *Service) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		accountID, ok := AccountIDFromContext(ctx)
		if !ok {
			return errorResponse(handler.ErrUnauthorized)
		}

		url, err := svc.StartCheckout(ctx, accountID)
		if err != nil {
			return errorResponse(err)
		}
		return respond(http.StatusOK, map[string]string{"checkout_url": url})
	}
}

func confirmCheckoutHandler(svc *Service) handler.HandlerFunc[handler.Context, confirmCheckoutRequest] {
	return func(ctx handler.Context, req confirmCheckoutRequest) handler.Response {
		accountID, ok := AccountIDFromContext(ctx)
		if !ok {
			return errorResponse(handler.ErrUnauthorized)
		}
		if req.SessionID == "" {
			return respond(http.StatusUnprocessableEntity, map[string]string{"error": "missing session_id"})
		}

		if _, err := svc.ConfirmCheckout(ctx, accountID, req.SessionID); err != nil {
			return errorResponse(err)
		}
		return respond(http.StatusOK, map[string]string{"message": "Subscription activated."})
	}
}

func manageHandler(svc *Service) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		accountID, ok := AccountIDFromContext(ctx)
		if !ok {
			return errorResponse(handler.ErrUnauthorized)
		}

		url, err := svc.PortalURL(ctx, accountID)
		if err != nil {
			return errorResponse(err)
		}
		return respond(http.StatusOK, map[string]string{"management_url": url})
	}
}

func transitionHandler(svc *Service, op func(*Service, context.Context, uuid.UUID) (Account, error), message string) handler.HandlerFunc[handler.Context, emptyRequest] {
	return func(ctx handler.Context, _ emptyRequest) handler.Response {
		accountID, ok := AccountIDFromContext(ctx)
		if !ok {
			return errorResponse(handler.ErrUnauthorized)
		}

		if _, err := op(svc, ctx, accountID); err != nil {
			return errorResponse(err)
		}
		return respond(http.StatusOK, map[string]string{"message": message})
	}
}

// errorResponse maps the billing error taxonomy onto HTTP status codes.
func errorResponse(err error) handler.Response {
	switch {
	case errors.Is(err, ErrNoSubscription), errors.Is(err, ErrNoCustomer), errors.Is(err, ErrNotFound):
		return respond(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrProcessor),
		errors.Is(err, ErrCheckoutIncomplete),
		errors.Is(err, ErrUnknownStatus):
		// The processor's human-readable message passes through unmodified.
		return respond(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		var httpErr handler.HTTPError
		if errors.As(err, &httpErr) {
			return respond(httpErr.Code, map[string]string{"error": httpErr.Key})
		}
		return respond(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// respond renders v as a plain JSON body. The billing endpoints expose flat
// payloads ({checkout_url}, {message}, {error}) rather than the data envelope.
type plainJSON struct {
	status int
	body   any
}

func (p plainJSON) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(p.status)
	return json.NewEncoder(w).Encode(p.body)
}

func respond(status int, body any) handler.Response {
	return plainJSON{status: status, body: body}
}
