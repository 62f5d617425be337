package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/finance"
	"github.com/sells-group/cre-analytics/internal/model"
	"github.com/sells-group/cre-analytics/internal/portfolio"
	"github.com/sells-group/cre-analytics/internal/risk"
	"github.com/sells-group/cre-analytics/internal/store"
)

// statsDefaultLookback bounds the stats window when the caller does not
// supply one.
const statsDefaultLookback = 30 * 24 * time.Hour

// creditRequest carries the scoring inputs for one property. The stateless
// credit endpoint takes the property ID from the body; the per-property
// analyze endpoint takes it from the URL.
type creditRequest struct {
	PropertyID     string                      `json:"property_id,omitempty"`
	Tenants        []model.TenantProfile       `json:"tenants"`
	Leases         []model.LeaseRisk           `json:"leases"`
	Concentrations []model.TenantConcentration `json:"concentrations"`
	Market         model.MarketData            `json:"market"`
}

type portfolioRequest struct {
	Properties []model.PropertySnapshot `json:"properties"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var p model.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	saved, err := s.store.SaveProperty(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := propertyFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	props, err := s.store.ListProperties(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if props == nil {
		props = []model.Property{}
	}
	writeJSON(w, http.StatusOK, props)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var p model.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := s.store.UpdateProperty(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := s.store.GetProperty(r.Context(), p.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProperty(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyzeProperty scores the posted tenant inputs against a stored
// property and persists the resulting analysis.
func (s *Server) handleAnalyzeProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.store.GetProperty(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.agg.Aggregate(id, req.Tenants, req.Leases, req.Concentrations, req.Market)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	saved, err := s.store.SaveAnalysis(r.Context(), *result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleCreditAnalysis scores posted inputs without touching the store.
func (s *Server) handleCreditAnalysis(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.agg.Aggregate(req.PropertyID, req.Tenants, req.Leases, req.Concentrations, req.Market)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMetricsAnalysis(w http.ResponseWriter, r *http.Request) {
	var in finance.MetricsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := finance.CalculateMetrics(in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	var f risk.Factors
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, risk.Generate(f))
}

func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := portfolio.Analyze(req.Properties)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	filter, err := analysisFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analyses, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if analyses == nil {
		analyses = []model.PropertyCreditAnalysis{}
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r.URL.Query().Get("since_days"), "since_days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lookback := statsDefaultLookback
	if days > 0 {
		lookback = time.Duration(days) * 24 * time.Hour
	}

	stats, err := s.store.Stats(r.Context(), time.Now().UTC().Add(-lookback))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func propertyFilterFromQuery(r *http.Request) (store.PropertyFilter, error) {
	q := r.URL.Query()
	filter := store.PropertyFilter{PropertyType: model.PropertyType(q.Get("property_type"))}

	var err error
	if filter.MinValue, err = floatParam(q.Get("min_value"), "min_value"); err != nil {
		return filter, err
	}
	if filter.MaxValue, err = floatParam(q.Get("max_value"), "max_value"); err != nil {
		return filter, err
	}
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	filter.Offset, err = intParam(q.Get("offset"), "offset")
	return filter, err
}

func analysisFilterFromQuery(r *http.Request) (store.AnalysisFilter, error) {
	q := r.URL.Query()
	filter := store.AnalysisFilter{
		PropertyID: q.Get("property_id"),
		RiskLevel:  model.RiskLevel(q.Get("risk_level")),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	filter.Offset, err = intParam(q.Get("offset"), "offset")
	return filter, err
}

func floatParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
