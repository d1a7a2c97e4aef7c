package billing

import "time"

// HasAccess is the access policy evaluator: does this account currently have
// paid-feature access. Pure, derived solely from the four billing fields so
// it can be re-evaluated at any time; no cached boolean anywhere.
//
// Canceled subscriptions keep access until the paid-for period ends, while
// paused ones lose it immediately. The asymmetry follows the business policy,
// not an oversight.
func HasAccess(acc Account, now time.Time) bool {
	if !acc.HasSubscription() {
		return false
	}

	switch acc.Status {
	case StatusActive, StatusTrialing:
		if acc.CurrentPeriodEnd == nil {
			return true
		}
		return acc.CurrentPeriodEnd.After(now)
	case StatusCanceled:
		// Access continues through the already paid period.
		return acc.CurrentPeriodEnd != nil && acc.CurrentPeriodEnd.After(now)
	default:
		return false
	}
}
