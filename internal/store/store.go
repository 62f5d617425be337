// Package store persists properties and credit analyses behind a single
// interface with SQLite and Postgres implementations. Full records live as
// JSON documents; the columns exist for filtering and aggregation.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/model"
)

// ErrNotFound reports a lookup for an entity the store does not hold.
// The API layer maps it to 404.
var ErrNotFound = eris.New("store: not found")

// PropertyFilter specifies criteria for listing properties.
type PropertyFilter struct {
	PropertyType model.PropertyType `json:"property_type,omitempty"`
	MinValue     float64            `json:"min_value,omitempty"`
	MaxValue     float64            `json:"max_value,omitempty"`
	Limit        int                `json:"limit,omitempty"`
	Offset       int                `json:"offset,omitempty"`
}

// AnalysisFilter specifies criteria for listing analyses.
type AnalysisFilter struct {
	PropertyID string          `json:"property_id,omitempty"`
	RiskLevel  model.RiskLevel `json:"risk_level,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// AnalysisStats is an operational snapshot over stored analyses.
type AnalysisStats struct {
	TotalAnalyses    int                     `json:"total_analyses"`
	AverageRiskScore float64                 `json:"average_risk_score"`
	RiskLevelCounts  map[model.RiskLevel]int `json:"risk_level_counts"`
	Since            time.Time               `json:"since"`
}

// Store defines the persistence interface for properties and analyses.
type Store interface {
	// Properties
	SaveProperty(ctx context.Context, p model.Property) (*model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, error)
	UpdateProperty(ctx context.Context, p model.Property) error
	DeleteProperty(ctx context.Context, id string) error
	BulkImportProperties(ctx context.Context, props []model.Property) (int64, error)

	// Analyses
	SaveAnalysis(ctx context.Context, a model.PropertyCreditAnalysis) (*model.PropertyCreditAnalysis, error)
	GetAnalysis(ctx context.Context, id string) (*model.PropertyCreditAnalysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.PropertyCreditAnalysis, error)
	LatestAnalysisForProperty(ctx context.Context, propertyID string) (*model.PropertyCreditAnalysis, error)
	Stats(ctx context.Context, since time.Time) (*AnalysisStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
