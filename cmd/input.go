package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/model"
)

// analysisInput is the on-disk shape for credit scoring inputs: a tenant
// roster with matching lease and concentration records, plus optional market
// conditions. Absent market data falls back to the configured provider.
type analysisInput struct {
	PropertyID     string                      `json:"property_id,omitempty"`
	Tenants        []model.TenantProfile       `json:"tenants"`
	Leases         []model.LeaseRisk           `json:"leases"`
	Concentrations []model.TenantConcentration `json:"concentrations"`
	Market         *model.MarketData           `json:"market,omitempty"`
}

func loadAnalysisInput(path string) (*analysisInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read input file %s", path)
	}

	var in analysisInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrapf(err, "parse input file %s", path)
	}
	return &in, nil
}

// resolveMarket returns the input file's market block when present,
// otherwise the configured provider's data.
func resolveMarket(ctx context.Context, in *analysisInput) (model.MarketData, error) {
	if in.Market != nil {
		return *in.Market, nil
	}

	md, err := initMarketProvider().MarketData(ctx)
	if err != nil {
		return model.MarketData{}, eris.Wrap(err, "fetch market data")
	}
	return md, nil
}

func leaseByTenant(leases []model.LeaseRisk) map[string]model.LeaseRisk {
	m := make(map[string]model.LeaseRisk, len(leases))
	for _, l := range leases {
		m[l.TenantID] = l
	}
	return m
}

func concentrationByTenant(concs []model.TenantConcentration) map[string]model.TenantConcentration {
	m := make(map[string]model.TenantConcentration, len(concs))
	for _, c := range concs {
		m[c.TenantID] = c
	}
	return m
}
