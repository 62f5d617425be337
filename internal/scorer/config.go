// Package scorer implements per-tenant credit risk scoring for commercial
// real-estate credit analysis.
package scorer

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/cre-analytics/internal/model"
)

// Sub-score shaping constants. Values in [0,1] feed the weighted base score.
const (
	revenueScaleDollars = 10_000_000.0
	revenueWeight       = 0.5
	publicCompanyBonus  = 0.2
	tenureScaleYears    = 20.0
	tenureWeight        = 0.3
	marketPositionCap   = 0.95

	creditScoreFallback = 600.0
	creditScoreFloor    = 500.0
	creditScoreRange    = 300.0

	historyScaleYears   = 15.0
	operatingHistoryCap = 0.95

	// Market conditions blend.
	industryGrowthWeight = 0.3
	occupancyWeight      = 0.3
	economicIndexWeight  = 0.4
)

// Placeholder sub-scores. No payment-history feed or uncertainty model
// exists yet; replacing these constants is the single point of change.
const (
	paymentHistoryPlaceholder = 0.85
	confidencePlaceholder     = 0.85
)

// Additive score adjustments applied after the weighted base score.
const (
	longLeaseYears    = 5.0
	longLeaseBonus    = 5.0
	shortLeaseYears   = 1.0
	shortLeasePenalty = -10.0

	heavyConcentrationShare      = 0.3
	heavyConcentrationPenalty    = -10.0
	elevatedConcentrationShare   = 0.2
	elevatedConcentrationPenalty = -5.0

	overMarketDelta  = 0.2
	overMarketPenalty = -5.0
	underMarketDelta = -0.1
	underMarketBonus = 5.0
)

// atMarketBand is the rent delta magnitude treated as "at market" when
// classifying a lease for market comparison.
const atMarketBand = 0.05

// Config holds the injected scoring tables: the per-industry risk factors,
// the factor weights, and the risk band thresholds. Instances are immutable
// after construction and safe to share across concurrent calls.
type Config struct {
	IndustryRisk map[model.Industry]float64 `yaml:"industry_risk" mapstructure:"industry_risk"`
	Weights      model.CreditRiskWeights    `yaml:"weights" mapstructure:"weights"`
	Thresholds   model.RiskThresholds       `yaml:"thresholds" mapstructure:"thresholds"`
}

// DefaultConfig returns the standard scoring tables. Weights sum to 1.0.
func DefaultConfig() Config {
	return Config{
		IndustryRisk: map[model.Industry]float64{
			model.IndustryTechnology:    0.85,
			model.IndustryFinance:       0.80,
			model.IndustryHealthcare:    0.90,
			model.IndustryRetail:        0.70,
			model.IndustryManufacturing: 0.75,
			model.IndustryProfessional:  0.85,
			model.IndustryGovernment:    0.95,
			model.IndustryOther:         0.65,
		},
		Weights: model.CreditRiskWeights{
			IndustryRisk:      0.20,
			MarketPosition:    0.15,
			FinancialStrength: 0.25,
			OperatingHistory:  0.15,
			PaymentHistory:    0.15,
			MarketConditions:  0.10,
		},
		Thresholds: model.DefaultRiskThresholds(),
	}
}

// Validate checks that a Config is internally consistent.
func (c Config) Validate() error {
	var errs []string

	weights := map[string]float64{
		"industry_risk":      c.Weights.IndustryRisk,
		"market_position":    c.Weights.MarketPosition,
		"financial_strength": c.Weights.FinancialStrength,
		"operating_history":  c.Weights.OperatingHistory,
		"payment_history":    c.Weights.PaymentHistory,
		"market_conditions":  c.Weights.MarketConditions,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("weight %s must be >= 0", name))
		}
	}

	// Weights must sum to 1 (allow tolerance for floating-point).
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.4f", sum))
	}

	if len(c.IndustryRisk) == 0 {
		errs = append(errs, "industry risk table must not be empty")
	}
	if _, ok := c.IndustryRisk[model.IndustryOther]; !ok {
		errs = append(errs, "industry risk table must include Other as the fallback")
	}
	for ind, f := range c.IndustryRisk {
		if f < 0 || f > 1 {
			errs = append(errs, fmt.Sprintf("industry risk factor for %s must be in [0,1], got %.2f", ind, f))
		}
	}

	// Band bounds must descend so the partition is non-overlapping.
	t := c.Thresholds
	if !(t.Low > t.Moderate && t.Moderate > t.High) {
		errs = append(errs, fmt.Sprintf("thresholds must descend low > moderate > high, got %.1f/%.1f/%.1f", t.Low, t.Moderate, t.High))
	}
	if t.High < 0 || t.Low > 100 {
		errs = append(errs, "thresholds must lie within [0,100]")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// fileOverrides is the YAML shape for scoring table overrides. Sections are
// optional; absent sections keep their defaults.
type fileOverrides struct {
	IndustryRisk map[string]float64       `yaml:"industry_risk"`
	Weights      *model.CreditRiskWeights `yaml:"weights"`
	Thresholds   *model.RiskThresholds    `yaml:"thresholds"`
}

// LoadConfigFile reads scoring table overrides from a YAML file and merges
// them over the defaults. Industry entries merge per key; weights and
// thresholds replace wholesale when present.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "scorer: read config %s", path)
	}

	// The YAML has a top-level "scoring" key.
	var wrapper struct {
		Scoring fileOverrides `yaml:"scoring"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, eris.Wrap(err, "scorer: parse config")
	}

	cfg := DefaultConfig()
	for ind, f := range wrapper.Scoring.IndustryRisk {
		cfg.IndustryRisk[model.Industry(ind)] = f
	}
	if wrapper.Scoring.Weights != nil {
		cfg.Weights = *wrapper.Scoring.Weights
	}
	if wrapper.Scoring.Thresholds != nil {
		cfg.Thresholds = *wrapper.Scoring.Thresholds
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
