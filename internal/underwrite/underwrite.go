// Package underwrite checks underwriting assumptions against accepted
// bounds. Rule failures are reported, never fatal: the caller decides
// whether an out-of-bounds assumption blocks a deal.
package underwrite

import (
	"fmt"

	"github.com/sells-group/cre-analytics/internal/metrics"
)

// Accepted assumption bounds. Growth and vacancy are fractions, as is the
// derived cap rate.
const (
	maxGrowthRate  = 0.05
	maxVacancyRate = 0.15
	minCapRate     = 0.04
	maxCapRate     = 0.12
)

// Assumptions are the underwriting inputs under review. Rates are fractions
// (0.05 = 5%).
type Assumptions struct {
	IncomeGrowth      float64 `json:"income_growth"`
	ExpenseGrowth     float64 `json:"expense_growth"`
	VacancyRate       float64 `json:"vacancy_rate"`
	GrossIncome       float64 `json:"gross_income"`
	OperatingExpenses float64 `json:"operating_expenses"`
	PropertyValue     float64 `json:"property_value"`
}

// RuleResults holds the pass/fail outcome of each named rule.
type RuleResults struct {
	IncomeGrowth  bool `json:"income_growth"`
	ExpenseGrowth bool `json:"expense_growth"`
	VacancyRate   bool `json:"vacancy_rate"`
	CapRate       bool `json:"cap_rate"`
}

// Result is the full validation outcome. CapRate is the fraction derived
// from the assumptions ((gross income - expenses) / value).
type Result struct {
	Rules    RuleResults `json:"validation_results"`
	CapRate  float64     `json:"cap_rate"`
	IsValid  bool        `json:"is_valid"`
	Failures []string    `json:"failures,omitempty"`
}

// Validate evaluates every rule independently and reports which failed.
// IsValid is true only when all rules pass.
func Validate(a Assumptions) Result {
	capRate := metrics.RatioOrZero(a.GrossIncome-a.OperatingExpenses, a.PropertyValue)

	rules := RuleResults{
		IncomeGrowth:  withinGrowthBounds(a.IncomeGrowth),
		ExpenseGrowth: withinGrowthBounds(a.ExpenseGrowth),
		VacancyRate:   a.VacancyRate >= 0 && a.VacancyRate <= maxVacancyRate,
		CapRate:       capRate >= minCapRate && capRate <= maxCapRate,
	}

	var failures []string
	if !rules.IncomeGrowth {
		failures = append(failures, fmt.Sprintf("income growth %.3f outside [0, %.2f]", a.IncomeGrowth, maxGrowthRate))
	}
	if !rules.ExpenseGrowth {
		failures = append(failures, fmt.Sprintf("expense growth %.3f outside [0, %.2f]", a.ExpenseGrowth, maxGrowthRate))
	}
	if !rules.VacancyRate {
		failures = append(failures, fmt.Sprintf("vacancy rate %.3f outside [0, %.2f]", a.VacancyRate, maxVacancyRate))
	}
	if !rules.CapRate {
		failures = append(failures, fmt.Sprintf("implied cap rate %.4f outside [%.2f, %.2f]", capRate, minCapRate, maxCapRate))
	}

	return Result{
		Rules:    rules,
		CapRate:  capRate,
		IsValid:  len(failures) == 0,
		Failures: failures,
	}
}

func withinGrowthBounds(rate float64) bool {
	return rate >= 0 && rate <= maxGrowthRate
}
