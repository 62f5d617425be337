package anthropic

import "go.uber.org/zap"

// pricing is input/output USD per million tokens for known models. Cache
// writes bill at 1.25x input, cache reads at 0.1x input.
var pricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"claude-opus-4-6":            {15.00, 75.00},
}

// EstimateCost returns the estimated USD cost of this usage under the given
// model, or 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * p[0]
	outCost := (float64(u.OutputTokens) / 1e6) * p[1]
	cacheWriteCost := (float64(u.CacheCreationInputTokens) / 1e6) * p[0] * 1.25
	cacheReadCost := (float64(u.CacheReadInputTokens) / 1e6) * p[0] * 0.1
	return inCost + outCost + cacheWriteCost + cacheReadCost
}

// LogCost emits a structured cost-attribution line for this usage.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}
