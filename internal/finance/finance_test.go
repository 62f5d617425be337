package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cre-analytics/internal/model"
)

func fullInput() MetricsInput {
	return MetricsInput{
		PropertyValue:      23_000_000,
		NOI:                1_500_000,
		DebtService:        1_100_000,
		OperatingExpenses:  600_000,
		LoanAmount:         15_000_000,
		BreakEvenOccupancy: 78,
		SquareFootage:      50_000,
		TotalRevenue:       2_100_000,
	}
}

func TestCalculateMetrics(t *testing.T) {
	t.Parallel()
	got, err := CalculateMetrics(fullInput())
	require.NoError(t, err)

	assert.InDelta(t, 1_500_000, got.NOI, 0.01)
	assert.InDelta(t, 6.52, got.CapRate, 0.001)
	assert.InDelta(t, 8.5, got.IRR, 0.001)
	assert.InDelta(t, 5.00, got.CashOnCash, 0.001)
	assert.InDelta(t, 1.36, got.DebtServiceCoverage, 0.001)
	assert.InDelta(t, 65.22, got.LoanToValue, 0.001)
	assert.InDelta(t, 40.00, got.OperatingExpenseRatio, 0.001)
	assert.InDelta(t, 78, got.BreakEvenOccupancy, 0.001)

	assert.InDelta(t, 460.00, got.PricePerSqFt, 0.001)
	assert.InDelta(t, 30.00, got.NOIPerSqFt, 0.001)
	assert.InDelta(t, 8_000_000, got.EquityRequired, 0.01)
	assert.InDelta(t, 71.43, got.OperatingMargin, 0.001)
	assert.InDelta(t, 10.00, got.DebtYield, 0.001)
}

func TestCalculateMetricsOptionalInputs(t *testing.T) {
	t.Parallel()

	in := fullInput()
	in.SquareFootage = 0
	in.TotalRevenue = 0

	got, err := CalculateMetrics(in)
	require.NoError(t, err)

	// Absent optional denominators zero out their metrics, never NaN.
	assert.Zero(t, got.PricePerSqFt)
	assert.Zero(t, got.NOIPerSqFt)
	assert.Zero(t, got.OperatingMargin)

	// Core ratios are untouched.
	assert.InDelta(t, 6.52, got.CapRate, 0.001)
	assert.InDelta(t, 1.36, got.DebtServiceCoverage, 0.001)
}

func TestCalculateMetricsUnsecuredLoan(t *testing.T) {
	t.Parallel()

	in := fullInput()
	in.LoanAmount = 0

	got, err := CalculateMetrics(in)
	require.NoError(t, err)

	assert.Zero(t, got.LoanToValue)
	assert.Zero(t, got.DebtYield)
	assert.InDelta(t, 23_000_000, got.EquityRequired, 0.01)
	// (1.5M - 1.1M) / 23M x 100.
	assert.InDelta(t, 1.74, got.CashOnCash, 0.001)
}

func TestCalculateMetricsPreconditions(t *testing.T) {
	t.Parallel()

	t.Run("zero debt service", func(t *testing.T) {
		in := fullInput()
		in.DebtService = 0
		_, err := CalculateMetrics(in)
		require.Error(t, err)
		assert.True(t, model.IsDivision(err))
		assert.Contains(t, err.Error(), "debt service")
	})

	t.Run("fully leveraged", func(t *testing.T) {
		in := fullInput()
		in.LoanAmount = in.PropertyValue
		_, err := CalculateMetrics(in)
		require.Error(t, err)
		assert.True(t, model.IsDivision(err))
		assert.Contains(t, err.Error(), "loan amount")
	})
}
