package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage TokenUsage
		want  float64
	}{
		{
			// 1M * $0.80 + 1M * $4.00
			name:  "haiku",
			model: "claude-haiku-4-5-20251001",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			want:  4.80,
		},
		{
			// 1M * $3.00 + 1M * $15.00
			name:  "sonnet",
			model: "claude-sonnet-4-5-20250929",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			want:  18.00,
		},
		{
			// 1M * $15.00 + 1M * $75.00
			name:  "opus",
			model: "claude-opus-4-6",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			want:  90.00,
		},
		{
			// 0.5M * $0.80 + 0.1M * $4.00 + 0.2M * $0.80 * 1.25 + 0.3M * $0.80 * 0.10
			name:  "haiku with cache traffic",
			model: "claude-haiku-4-5-20251001",
			usage: TokenUsage{
				InputTokens:              500_000,
				OutputTokens:             100_000,
				CacheCreationInputTokens: 200_000,
				CacheReadInputTokens:     300_000,
			},
			want: 1.024,
		},
		{
			name:  "unknown model",
			model: "unknown-model",
			usage: TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			want:  0,
		},
		{
			name:  "zero usage",
			model: "claude-haiku-4-5-20251001",
			usage: TokenUsage{},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.usage.EstimateCost(tt.model), 0.001)
		})
	}
}

func TestLogCostDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		usage := TokenUsage{InputTokens: 1200, OutputTokens: 300}
		usage.LogCost("claude-sonnet-4-5-20250929", "insights")
	})

	assert.NotPanics(t, func() {
		usage := TokenUsage{InputTokens: 100, OutputTokens: 50}
		usage.LogCost("unknown-model", "insights")
	})

	assert.NotPanics(t, func() {
		usage := TokenUsage{}
		usage.LogCost("claude-haiku-4-5-20251001", "")
	})
}
