package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/meterkit/pkg/catalog"
)

func validPlans() map[string]catalog.Plan {
	return map[string]catalog.Plan{
		"free": {Tier: "free", Name: "Free", UnitLimit: 50, PeriodDays: 30},
		"pro": {
			Tier: "pro", Name: "Pro", UnitLimit: 1000, PeriodDays: 30,
			Price: catalog.Money{Amount: 1900, Currency: "USD"}, Public: true,
		},
		"pro_annual": {
			Tier: "pro_annual", Name: "Pro (annual)", UnitLimit: 12000, PeriodDays: 365,
			AnnualMonthly: true, Price: catalog.Money{Amount: 19000, Currency: "USD"},
		},
		"lifetime": {Tier: "lifetime", UnitLimit: catalog.UnlimitedUnits, PeriodDays: catalog.NoRenewalDays},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid catalog", func(t *testing.T) {
		t.Parallel()
		cat, err := catalog.New(context.Background(), catalog.NewInMemSource(validPlans()))
		require.NoError(t, err)
		assert.Len(t, cat.Tiers(), 4)
	})

	t.Run("empty catalog fails", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.New(context.Background(), catalog.NewInMemSource(nil))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("tier key mismatch fails", func(t *testing.T) {
		t.Parallel()
		plans := map[string]catalog.Plan{
			"free": {Tier: "basic", UnitLimit: 10, PeriodDays: 30},
		}
		_, err := catalog.New(context.Background(), catalog.NewInMemSource(plans))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("negative limit fails", func(t *testing.T) {
		t.Parallel()
		plans := map[string]catalog.Plan{
			"free": {Tier: "free", UnitLimit: -1, PeriodDays: 30},
		}
		_, err := catalog.New(context.Background(), catalog.NewInMemSource(plans))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("non-positive period fails", func(t *testing.T) {
		t.Parallel()
		plans := map[string]catalog.Plan{
			"free": {Tier: "free", UnitLimit: 10, PeriodDays: 0},
		}
		_, err := catalog.New(context.Background(), catalog.NewInMemSource(plans))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("annual-monthly shorter than a month fails", func(t *testing.T) {
		t.Parallel()
		plans := map[string]catalog.Plan{
			"weird": {Tier: "weird", UnitLimit: 10, PeriodDays: 7, AnnualMonthly: true},
		}
		_, err := catalog.New(context.Background(), catalog.NewInMemSource(plans))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("nil source panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = catalog.New(context.Background(), nil)
		})
	})
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(context.Background(), catalog.NewInMemSource(validPlans()))
	require.NoError(t, err)

	t.Run("known tier", func(t *testing.T) {
		t.Parallel()
		plan, err := cat.Plan("pro")
		require.NoError(t, err)
		assert.EqualValues(t, 1000, plan.UnitLimit)
		assert.True(t, cat.Has("pro"))
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()
		_, err := cat.Plan("enterprise")
		assert.ErrorIs(t, err, catalog.ErrTierNotFound)
		assert.False(t, cat.Has("enterprise"))

		_, err = cat.LimitFor("enterprise")
		assert.ErrorIs(t, err, catalog.ErrTierNotFound)
	})

	t.Run("limit for ordinary tier", func(t *testing.T) {
		t.Parallel()
		limit, err := cat.LimitFor("pro")
		require.NoError(t, err)
		assert.EqualValues(t, 1000, limit)
	})

	t.Run("limit for annual tier is the monthly installment", func(t *testing.T) {
		t.Parallel()
		limit, err := cat.LimitFor("pro_annual")
		require.NoError(t, err)
		assert.EqualValues(t, 1000, limit, "ceil(12000/12)")
	})

	t.Run("period derivation", func(t *testing.T) {
		t.Parallel()
		p, err := cat.PeriodFor("pro")
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, p)

		p, err = cat.PeriodFor("pro_annual")
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, p, "annual-monthly resets monthly")

		p, err = cat.PeriodFor("lifetime")
		require.NoError(t, err)
		assert.Equal(t, time.Duration(catalog.NoRenewalDays)*24*time.Hour, p)
	})
}

func TestPlanMonthlyAllocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		plan catalog.Plan
		want int64
	}{
		{"ordinary tier keeps its limit", catalog.Plan{UnitLimit: 500, PeriodDays: 30}, 500},
		{"annual divides evenly", catalog.Plan{UnitLimit: 1200, PeriodDays: 365, AnnualMonthly: true}, 100},
		{"annual rounds up", catalog.Plan{UnitLimit: 100, PeriodDays: 365, AnnualMonthly: true}, 9},
		{"annual single unit", catalog.Plan{UnitLimit: 1, PeriodDays: 365, AnnualMonthly: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.plan.MonthlyAllocation())
		})
	}
}
