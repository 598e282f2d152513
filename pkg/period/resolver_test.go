package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/meterkit/pkg/catalog"
	"github.com/dmitrymomot/meterkit/pkg/period"
)

var t0 = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func monthlyPlan() catalog.Plan {
	return catalog.Plan{Tier: "pro", UnitLimit: 100, PeriodDays: 30}
}

func annualPlan() catalog.Plan {
	return catalog.Plan{Tier: "pro_annual", UnitLimit: 1200, PeriodDays: 365, AnnualMonthly: true}
}

func TestResolve_BoundaryExactness(t *testing.T) {
	t.Parallel()

	plan := monthlyPlan()
	periodEnd := t0.Add(30 * 24 * time.Hour)

	t.Run("before the boundary no reset", func(t *testing.T) {
		t.Parallel()
		res := period.Resolve(t0, plan, periodEnd.Add(-time.Second))
		assert.False(t, res.ResetNeeded)
	})

	t.Run("exactly at the boundary no reset", func(t *testing.T) {
		t.Parallel()
		res := period.Resolve(t0, plan, periodEnd)
		assert.False(t, res.ResetNeeded)
	})

	t.Run("strictly past the boundary resets", func(t *testing.T) {
		t.Parallel()
		res := period.Resolve(t0, plan, periodEnd.Add(time.Millisecond))
		require.True(t, res.ResetNeeded)
		assert.Equal(t, periodEnd, res.NewAnchor, "anchor advances to the boundary, not to now")
		assert.EqualValues(t, 0, res.NewUnitsConsumed)
		assert.Nil(t, res.NewLimitOverride)
	})
}

func TestResolve_DriftPrevention(t *testing.T) {
	t.Parallel()

	plan := monthlyPlan()

	// Idle for just over three periods: the anchor lands on the third
	// boundary of the original schedule, never on now.
	now := t0.Add(95 * 24 * time.Hour)
	res := period.Resolve(t0, plan, now)

	require.True(t, res.ResetNeeded)
	assert.Equal(t, t0.Add(90*24*time.Hour), res.NewAnchor)
}

func TestResolve_AnchorProperties(t *testing.T) {
	t.Parallel()

	plan := monthlyPlan()
	length := plan.ResetPeriod()

	// The anchor never exceeds now and is always a whole number of
	// periods away from the original anchor.
	for _, offset := range []time.Duration{
		time.Nanosecond,
		time.Hour,
		30 * 24 * time.Hour,
		30*24*time.Hour + time.Nanosecond,
		59 * 24 * time.Hour,
		61 * 24 * time.Hour,
		365 * 24 * time.Hour,
		1000 * 24 * time.Hour,
	} {
		now := t0.Add(offset)
		res := period.Resolve(t0, plan, now)
		if !res.ResetNeeded {
			continue
		}

		assert.False(t, res.NewAnchor.After(now), "anchor %v must not pass now %v", res.NewAnchor, now)
		assert.Zero(t, res.NewAnchor.Sub(t0)%length, "anchor must advance by whole periods, offset %v", offset)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	plan := monthlyPlan()
	now := t0.Add(45 * 24 * time.Hour)

	first := period.Resolve(t0, plan, now)
	second := period.Resolve(t0, plan, now)
	assert.Equal(t, first, second)
}

func TestResolve_AnnualMonthlyInstallment(t *testing.T) {
	t.Parallel()

	plan := annualPlan()

	// Reset window is one nominal month, not the billing year.
	now := t0.Add(31 * 24 * time.Hour)
	res := period.Resolve(t0, plan, now)

	require.True(t, res.ResetNeeded)
	assert.Equal(t, t0.Add(30*24*time.Hour), res.NewAnchor)
	require.NotNil(t, res.NewLimitOverride)
	assert.EqualValues(t, 100, *res.NewLimitOverride, "1200 annual units split into 12 installments")
}

func TestResolve_AnnualMonthlyCeilDivision(t *testing.T) {
	t.Parallel()

	plan := catalog.Plan{Tier: "odd", UnitLimit: 100, PeriodDays: 365, AnnualMonthly: true}
	res := period.Resolve(t0, plan, t0.Add(31*24*time.Hour))

	require.True(t, res.ResetNeeded)
	require.NotNil(t, res.NewLimitOverride)
	assert.EqualValues(t, 9, *res.NewLimitOverride, "ceil(100/12) = 9")
}

func TestResolve_NoRenewalTier(t *testing.T) {
	t.Parallel()

	plan := catalog.Plan{Tier: "lifetime", UnitLimit: catalog.UnlimitedUnits, PeriodDays: catalog.NoRenewalDays}

	// Decades later the period still has not lapsed.
	now := t0.Add(20 * 365 * 24 * time.Hour)
	res := period.Resolve(t0, plan, now)
	assert.False(t, res.ResetNeeded)
}

func TestEnd(t *testing.T) {
	t.Parallel()

	assert.Equal(t, t0.Add(30*24*time.Hour), period.End(t0, monthlyPlan()))
	assert.Equal(t, t0.Add(30*24*time.Hour), period.End(t0, annualPlan()), "annual-monthly ends after a nominal month")
}

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("fixed clock is frozen", func(t *testing.T) {
		t.Parallel()
		clock := period.Fixed(t0)
		assert.Equal(t, t0, clock.Now())
		assert.Equal(t, t0, clock.Now())
	})

	t.Run("system clock reports UTC", func(t *testing.T) {
		t.Parallel()
		now := period.SystemClock{}.Now()
		assert.Equal(t, time.UTC, now.Location())
	})
}
