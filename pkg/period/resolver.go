package period

import (
	"time"

	"github.com/dmitrymomot/meterkit/pkg/catalog"
)

// Resolution is the outcome of checking a subscription's usage window
// against the current time. When ResetNeeded is false the remaining fields
// are zero values and must be ignored.
type Resolution struct {
	ResetNeeded      bool
	NewAnchor        time.Time
	NewUnitsConsumed int64

	// NewLimitOverride is set only for annual-monthly tiers, to the monthly
	// installment of the annual quota. Nil means "leave the stored override
	// untouched", so manual grants on ordinary tiers survive period resets.
	NewLimitOverride *int64
}

// Resolve decides whether the usage window anchored at lastResetAt has
// lapsed at now, and if so computes the new anchor and counter values.
//
// Resolve is a pure function: it never reads the wall clock, performs no
// I/O, and is safe to call from both the mutating and the read-only paths.
// Only the caller holding a write transaction may persist its output.
//
// The boundary is strict: a call arriving exactly at the period end does
// not reset; only one strictly past it does.
//
// The new anchor is computed by adding whole periods to the old anchor,
// never by snapping to now. A subscriber checked long after several periods
// lapsed keeps their period boundaries aligned to the original schedule
// instead of sliding forward to the moment of the check.
func Resolve(lastResetAt time.Time, plan catalog.Plan, now time.Time) Resolution {
	length := plan.ResetPeriod()
	periodEnd := lastResetAt.Add(length)

	if !now.After(periodEnd) {
		return Resolution{}
	}

	periodsPassed := now.Sub(lastResetAt) / length
	res := Resolution{
		ResetNeeded:      true,
		NewAnchor:        lastResetAt.Add(time.Duration(periodsPassed) * length),
		NewUnitsConsumed: 0,
	}

	if plan.AnnualMonthly {
		allocation := plan.MonthlyAllocation()
		res.NewLimitOverride = &allocation
	}

	return res
}

// End returns the exclusive upper bound of the usage window anchored at
// lastResetAt for the given plan.
func End(lastResetAt time.Time, plan catalog.Plan) time.Time {
	return lastResetAt.Add(plan.ResetPeriod())
}
