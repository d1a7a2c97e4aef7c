package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrNoSubscription indicates a lifecycle action that requires an
	// existing subscription was invoked without one. Detected locally,
	// before any processor call.
	ErrNoSubscription = errors.New("no subscription found")

	// ErrNoCustomer indicates the billing portal was requested for an
	// account with no processor customer.
	ErrNoCustomer = errors.New("no billing customer found")

	// ErrProcessor is the base error for all processor-side failures.
	ErrProcessor = errors.New("payment processor error")

	// ErrInvalidState indicates a write that would violate the account
	// billing invariants (e.g. a non-none status without a subscription id).
	ErrInvalidState = errors.New("invalid billing state")

	// ErrCheckoutIncomplete indicates the checkout session exists but does
	// not reference a subscription yet.
	ErrCheckoutIncomplete = errors.New("checkout session has no subscription")
)

// ProcessorError carries the processor's human-readable message so it can be
// surfaced to the caller unmodified. Unwraps to ErrProcessor.
type ProcessorError struct {
	Message string
	Err     error
}

func (e *ProcessorError) Error() string {
	return e.Message
}

func (e *ProcessorError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProcessor, e.Err}
	}
	return []error{ErrProcessor}
}

// NewProcessorError wraps a transport failure with the message shown to the
// caller. Pass the processor's own message when one is available.
func NewProcessorError(message string, err error) *ProcessorError {
	return &ProcessorError{Message: message, Err: err}
}

// UnknownStatusError indicates the processor returned a subscription status
// outside the known vocabulary. The sync is rejected before any local write.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown subscription status %q", e.Value)
}

func NewUnknownStatusError(value string) *UnknownStatusError {
	return &UnknownStatusError{Value: value}
}

// ErrUnknownStatus matches any UnknownStatusError via errors.Is.
var ErrUnknownStatus = errors.New("unknown subscription status")

func (e *UnknownStatusError) Is(target error) bool {
	return target == ErrUnknownStatus
}
