// Package finance derives investment metrics for a single property from its
// financial inputs: cap rate, leverage ratios, per-square-foot figures, and
// operating margins.
package finance

import (
	"github.com/sells-group/cre-analytics/internal/metrics"
	"github.com/sells-group/cre-analytics/internal/model"
)

// irrPlaceholder stands in for a discounted-cash-flow IRR until projected
// cash flows are available.
const irrPlaceholder = 8.5

// MetricsInput carries the financial inputs for one property. SquareFootage
// and TotalRevenue are optional; zero skips the metrics derived from them.
type MetricsInput struct {
	PropertyValue      float64 `json:"property_value"`
	NOI                float64 `json:"noi"`
	DebtService        float64 `json:"debt_service"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	LoanAmount         float64 `json:"loan_amount"`
	BreakEvenOccupancy float64 `json:"break_even_occupancy"`
	SquareFootage      float64 `json:"square_footage,omitempty"`
	TotalRevenue       float64 `json:"total_revenue,omitempty"`
}

// CalculateMetrics derives the full metric set for one property. Debt
// service must be non-zero and property value must differ from the loan
// amount; both feed denominators. Optional inputs fall back to zero metrics
// instead of failing. All ratios are rounded to two decimals.
func CalculateMetrics(in MetricsInput) (model.FinancialMetrics, error) {
	if in.DebtService == 0 {
		return model.FinancialMetrics{}, model.NewDivisionError("debt service must be non-zero to compute coverage")
	}
	if in.PropertyValue == in.LoanAmount {
		return model.FinancialMetrics{}, model.NewDivisionError("property value must differ from loan amount to compute cash-on-cash return")
	}

	return model.FinancialMetrics{
		NOI:                in.NOI,
		IRR:                irrPlaceholder,
		BreakEvenOccupancy: in.BreakEvenOccupancy,

		CapRate:               metrics.Round2(metrics.RatioOrZero(in.NOI, in.PropertyValue) * 100),
		CashOnCash:            metrics.Round2((in.NOI - in.DebtService) / (in.PropertyValue - in.LoanAmount) * 100),
		DebtServiceCoverage:   metrics.Round2(in.NOI / in.DebtService),
		LoanToValue:           metrics.Round2(metrics.RatioOrZero(in.LoanAmount, in.PropertyValue) * 100),
		OperatingExpenseRatio: metrics.Round2(metrics.RatioOrZero(in.OperatingExpenses, in.NOI) * 100),

		PricePerSqFt:    metrics.Round2(metrics.RatioOrZero(in.PropertyValue, in.SquareFootage)),
		NOIPerSqFt:      metrics.Round2(metrics.RatioOrZero(in.NOI, in.SquareFootage)),
		EquityRequired:  metrics.Round2(in.PropertyValue - in.LoanAmount),
		OperatingMargin: metrics.Round2(metrics.RatioOrZero(in.NOI, in.TotalRevenue) * 100),
		DebtYield:       metrics.Round2(metrics.RatioOrZero(in.NOI, in.LoanAmount) * 100),
	}, nil
}
