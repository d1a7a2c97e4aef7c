package billing

import (
	"math"
	"time"
)

// Single-plan model: display constants instead of a plan catalog.
const (
	PlanName     = "Pro Plan"
	MonthlyPrice = "$29"
)

// Snapshot is the presentation-ready billing read model.
type Snapshot struct {
	PlanName           string     `json:"plan_name"`
	MonthlyPrice       string     `json:"monthly_price"`
	Status             Status     `json:"status"`
	StartsAt           time.Time  `json:"subscription_starts_at"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	NextBillingDate    *time.Time `json:"next_billing_date,omitempty"`
	TrialActive        bool       `json:"trial_active"`
	DaysUntilTrialEnds *int       `json:"days_until_trial_ends,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
}

// BuildSnapshot projects the account billing state into a display snapshot.
// Pure and side-effect-free. Returns nil when the account has no
// subscription, which is distinct from a snapshot with StatusNone.
func BuildSnapshot(acc Account, now time.Time) *Snapshot {
	if !acc.HasSubscription() {
		return nil
	}

	snap := &Snapshot{
		PlanName:         PlanName,
		MonthlyPrice:     MonthlyPrice,
		Status:           acc.Status,
		StartsAt:         acc.CreatedAt,
		CurrentPeriodEnd: acc.CurrentPeriodEnd,
		NextBillingDate:  acc.CurrentPeriodEnd,
		TrialActive:      acc.Status == StatusTrialing,
	}

	if acc.Status == StatusTrialing && acc.CurrentPeriodEnd != nil {
		days := int(math.Ceil(acc.CurrentPeriodEnd.Sub(now).Hours() / 24))
		snap.DaysUntilTrialEnds = &days
	}

	if acc.Status == StatusCanceled {
		// Approximation: the cancellation instant is not recorded
		// separately, so the row's last-modified time stands in for it.
		canceledAt := acc.UpdatedAt
		snap.CanceledAt = &canceledAt
	}

	return snap
}
