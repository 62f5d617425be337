package underwrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func soundAssumptions() Assumptions {
	return Assumptions{
		IncomeGrowth:      0.03,
		ExpenseGrowth:     0.02,
		VacancyRate:       0.08,
		GrossIncome:       2_100_000,
		OperatingExpenses: 600_000,
		PropertyValue:     23_000_000,
	}
}

func TestValidateSoundAssumptions(t *testing.T) {
	t.Parallel()

	got := Validate(soundAssumptions())

	assert.True(t, got.IsValid)
	assert.Empty(t, got.Failures)
	assert.True(t, got.Rules.IncomeGrowth)
	assert.True(t, got.Rules.ExpenseGrowth)
	assert.True(t, got.Rules.VacancyRate)
	assert.True(t, got.Rules.CapRate)
	// (2.1M - 0.6M) / 23M.
	assert.InDelta(t, 0.0652, got.CapRate, 0.0001)
}

func TestValidateRuleBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Assumptions)
		wantRule func(RuleResults) bool
		wantMsg  string
	}{
		{
			"income growth too aggressive",
			func(a *Assumptions) { a.IncomeGrowth = 0.08 },
			func(r RuleResults) bool { return r.IncomeGrowth },
			"income growth",
		},
		{
			"negative income growth",
			func(a *Assumptions) { a.IncomeGrowth = -0.01 },
			func(r RuleResults) bool { return r.IncomeGrowth },
			"income growth",
		},
		{
			"expense growth too aggressive",
			func(a *Assumptions) { a.ExpenseGrowth = 0.06 },
			func(r RuleResults) bool { return r.ExpenseGrowth },
			"expense growth",
		},
		{
			"vacancy above ceiling",
			func(a *Assumptions) { a.VacancyRate = 0.2 },
			func(r RuleResults) bool { return r.VacancyRate },
			"vacancy rate",
		},
		{
			"cap rate below band",
			func(a *Assumptions) { a.PropertyValue = 60_000_000 },
			func(r RuleResults) bool { return r.CapRate },
			"cap rate",
		},
		{
			"cap rate above band",
			func(a *Assumptions) { a.PropertyValue = 10_000_000 },
			func(r RuleResults) bool { return r.CapRate },
			"cap rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := soundAssumptions()
			tt.mutate(&a)

			got := Validate(a)
			assert.False(t, got.IsValid)
			assert.False(t, tt.wantRule(got.Rules))
			assert.Len(t, got.Failures, 1)
			assert.Contains(t, got.Failures[0], tt.wantMsg)
		})
	}
}

func TestValidateBoundariesInclusive(t *testing.T) {
	t.Parallel()

	a := soundAssumptions()
	a.IncomeGrowth = 0.05
	a.ExpenseGrowth = 0
	a.VacancyRate = 0.15
	// 1.2M / 10M = 0.12, the top of the cap band.
	a.GrossIncome = 1_800_000
	a.OperatingExpenses = 600_000
	a.PropertyValue = 10_000_000

	got := Validate(a)
	assert.True(t, got.IsValid, "bounds are inclusive: %v", got.Failures)
	assert.InDelta(t, 0.12, got.CapRate, 0.0001)
}

func TestValidateZeroValueProperty(t *testing.T) {
	t.Parallel()

	a := soundAssumptions()
	a.PropertyValue = 0

	got := Validate(a)
	// Cap rate defaults to 0 rather than dividing by zero, and 0 sits
	// outside the accepted band.
	assert.Zero(t, got.CapRate)
	assert.False(t, got.Rules.CapRate)
	assert.False(t, got.IsValid)
}
