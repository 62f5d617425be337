// Package insights generates qualitative analyst narratives for completed
// credit analyses through the Anthropic API. Narratives are advisory:
// scoring stays deterministic in the core packages, and a failed generation
// degrades to a log line instead of blocking an analysis.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/pkg/anthropic"
)

// Generation defaults.
const (
	DefaultModel       = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.3
)

// systemPrompt instructs the model to return the report as bare JSON.
const systemPrompt = `You are a skilled commercial real estate analyst. Analyze the given property data and provide detailed insights.

Respond with a single JSON object, no surrounding prose, in exactly this shape:
{
  "strengths": ["..."],
  "weaknesses": ["..."],
  "market_position": "...",
  "risk_factors": ["..."],
  "recommendations": ["..."]
}`

const marketSystemPrompt = `You are a market research analyst specializing in commercial real estate. Analyze the given market and provide insights.`

// Report is the structured narrative for one property analysis.
type Report struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	MarketPosition  string   `json:"market_position"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
}

// Options tune generation. Zero values fall back to the package defaults.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	return o
}

// Generator produces insight reports from credit analyses.
type Generator struct {
	client anthropic.Client
	opts   Options
}

// NewGenerator wraps client with the given options.
func NewGenerator(client anthropic.Client, opts Options) *Generator {
	return &Generator{client: client, opts: opts.withDefaults()}
}

// Generate builds the analyst report for a completed analysis.
func (g *Generator) Generate(ctx context.Context, analysis model.PropertyCreditAnalysis) (*Report, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, eris.Wrap(err, "insights: marshal analysis")
	}

	system := []anthropic.SystemBlock{{Text: systemPrompt}}
	resp, err := g.client.CreateMessage(ctx, g.buildRequest(system, payload))
	if err != nil {
		return nil, eris.Wrap(err, "insights: create message")
	}
	resp.Usage.LogCost(g.opts.Model, "insights")

	return parseReport(extractText(resp))
}

// GenerateOrNil swallows generation errors so callers can treat the report
// as strictly optional.
func (g *Generator) GenerateOrNil(ctx context.Context, analysis model.PropertyCreditAnalysis) *Report {
	report, err := g.Generate(ctx, analysis)
	if err != nil {
		zap.L().Warn("insights: generation failed",
			zap.String("property_id", analysis.PropertyID),
			zap.Error(err))
		return nil
	}
	return report
}

// MarketCommentary returns free-text commentary on a submarket's benchmark
// figures.
func (g *Generator) MarketCommentary(ctx context.Context, submarket string, benchmarks model.MarketMetrics) (string, error) {
	payload, err := json.Marshal(benchmarks)
	if err != nil {
		return "", eris.Wrap(err, "insights: marshal benchmarks")
	}

	temp := g.opts.Temperature
	req := anthropic.MessageRequest{
		Model:     g.opts.Model,
		MaxTokens: g.opts.MaxTokens,
		System:    []anthropic.SystemBlock{{Text: marketSystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Analyze the market conditions for: %s\n\nBenchmarks: %s", submarket, payload)},
		},
		Temperature: &temp,
	}

	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "insights: market commentary")
	}
	resp.Usage.LogCost(g.opts.Model, "market_commentary")

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", eris.New("insights: empty market commentary")
	}
	return text, nil
}

func (g *Generator) buildRequest(system []anthropic.SystemBlock, payload []byte) anthropic.MessageRequest {
	temp := g.opts.Temperature
	return anthropic.MessageRequest{
		Model:     g.opts.Model,
		MaxTokens: g.opts.MaxTokens,
		System:    system,
		Messages: []anthropic.Message{
			{Role: "user", Content: "Analyze this property data: " + string(payload)},
		},
		Temperature: &temp,
	}
}

// parseReport decodes the model's JSON report, tolerating markdown fences
// and surrounding prose.
func parseReport(text string) (*Report, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("insights: response has no text content")
	}
	var r Report
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, eris.Wrap(err, "insights: parse report")
	}
	return &r, nil
}

// extractText concatenates all text content blocks.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
