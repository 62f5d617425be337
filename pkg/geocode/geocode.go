// Package geocode resolves property addresses to coordinates using the
// Census Geocoder, with the Google Geocoding API as an optional
// fallback for addresses the Census benchmark cannot match.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/cre-analytics/internal/model"
)

// Result is the outcome of one address lookup.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`  // census or google
	Quality   string  `json:"quality"` // rooftop, range, centroid, approximate
	Matched   bool    `json:"matched"`
}

// Client geocodes property addresses.
type Client interface {
	// Geocode resolves a single address. An unmatched address is not
	// an error.
	Geocode(ctx context.Context, addr model.Address) (*Result, error)

	// BatchGeocode resolves addresses in bulk, one result per input in
	// the same order.
	BatchGeocode(ctx context.Context, addrs []model.Address) ([]Result, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables the Google Geocoding API fallback.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) { g.googleKey = key }
}

// WithHTTPClient swaps the HTTP client used for all lookups.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) { g.httpClient = hc }
}

// WithRateLimit caps lookups at rps requests per second.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) { g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

type geocoder struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	googleKey  string
	memo       *memo

	censusURL      string
	censusBatchURL string
	googleURL      string
}

// NewClient builds a geocoding client. Without options it talks to the
// Census Geocoder at 10 requests per second with no fallback.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(10, 10),
		memo:           newMemo(),
		censusURL:      censusOneLineURL,
		censusBatchURL: censusBatchURL,
		googleURL:      googleGeocodeURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves one address: memo first, then Census, then Google
// when a key is configured.
func (g *geocoder) Geocode(ctx context.Context, addr model.Address) (*Result, error) {
	if oneLine(addr) == "" {
		return &Result{}, nil
	}
	if r, ok := g.memo.lookup(addr); ok {
		return &r, nil
	}

	r, err := g.censusLookup(ctx, addr)
	if err != nil {
		if g.googleKey == "" {
			return nil, err
		}
		zap.L().Warn("census geocode failed, trying google", zap.Error(err))
		r = &Result{Source: sourceCensus}
	}
	if !r.Matched && g.googleKey != "" {
		gr, err := g.googleLookup(ctx, addr)
		if err != nil {
			return nil, err
		}
		if gr.Matched {
			r = gr
		}
	}

	g.memo.store(addr, *r)
	return r, nil
}

// BatchGeocode resolves addresses through the Census batch endpoint,
// retrying unmatched rows against Google when a key is configured. A
// failed batch upload degrades to single lookups.
func (g *geocoder) BatchGeocode(ctx context.Context, addrs []model.Address) ([]Result, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	results := make([]Result, len(addrs))
	var pending []model.Address
	var pendingIdx []int
	for i, addr := range addrs {
		if r, ok := g.memo.lookup(addr); ok {
			results[i] = r
			continue
		}
		pending = append(pending, addr)
		pendingIdx = append(pendingIdx, i)
	}
	if len(pending) == 0 {
		return results, nil
	}

	batch, err := g.censusBatchLookup(ctx, pending)
	if err != nil {
		zap.L().Warn("census batch geocode failed, falling back to single lookups", zap.Error(err))
		for j, addr := range pending {
			r, lerr := g.Geocode(ctx, addr)
			if lerr != nil {
				return nil, lerr
			}
			results[pendingIdx[j]] = *r
		}
		return results, nil
	}

	for j := range batch {
		if !batch[j].Matched && g.googleKey != "" {
			gr, gerr := g.googleLookup(ctx, pending[j])
			if gerr == nil && gr.Matched {
				batch[j] = *gr
			}
		}
		g.memo.store(pending[j], batch[j])
		results[pendingIdx[j]] = batch[j]
	}
	return results, nil
}

// oneLine joins the populated address parts the way the Census one-line
// endpoint expects.
func oneLine(addr model.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{addr.Street, addr.City, addr.State, addr.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
