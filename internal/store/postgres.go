package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cre-analytics/internal/db"
	"github.com/sells-group/cre-analytics/internal/model"
)

// PostgresStore implements Store on a pgx connection pool. Tests inject a
// pgxmock pool through NewPostgresFromPool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths: single-record lookups and analysis writes.
var preparedStatements = map[string]string{
	"insert_property": `INSERT INTO properties (id, name, property_type, value, record, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_property":    `SELECT record FROM properties WHERE id = $1`,
	"insert_analysis": `INSERT INTO analyses (id, property_id, risk_score, risk_level, record, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_analysis":    `SELECT record FROM analyses WHERE id = $1`,
	"latest_analysis": `SELECT record FROM analyses WHERE property_id = $1 ORDER BY created_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a sized connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns int) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 8
	}
	pgxCfg.MaxConns = int32(maxConns)
	pgxCfg.MinConns = int32(min(2, maxConns))
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool without taking ownership of it.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	property_type TEXT NOT NULL,
	value         DOUBLE PRECISION NOT NULL DEFAULT 0,
	record        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	risk_score  DOUBLE PRECISION NOT NULL,
	risk_level  TEXT NOT NULL,
	record      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
CREATE INDEX IF NOT EXISTS idx_properties_value ON properties(value);
CREATE INDEX IF NOT EXISTS idx_analyses_property_id ON analyses(property_id);
CREATE INDEX IF NOT EXISTS idx_analyses_risk_level ON analyses(risk_level);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveProperty(ctx context.Context, p model.Property) (*model.Property, error) {
	p = prepareProperty(p, time.Now().UTC())

	record, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal property")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO properties (id, name, property_type, value, record, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, string(p.PropertyType), p.Value, record, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert property")
	}
	return &p, nil
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM properties WHERE id = $1`, id).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "property %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get property %s", id)
	}

	var p model.Property
	if err := json.Unmarshal(record, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal property")
	}
	return &p, nil
}

func (s *PostgresStore) ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, error) {
	query := `SELECT record FROM properties WHERE true`
	args := []any{}
	argIdx := 1

	if filter.PropertyType != "" {
		query += fmt.Sprintf(` AND property_type = $%d`, argIdx)
		args = append(args, string(filter.PropertyType))
		argIdx++
	}
	if filter.MinValue > 0 {
		query += fmt.Sprintf(` AND value >= $%d`, argIdx)
		args = append(args, filter.MinValue)
		argIdx++
	}
	if filter.MaxValue > 0 {
		query += fmt.Sprintf(` AND value <= $%d`, argIdx)
		args = append(args, filter.MaxValue)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list properties")
	}
	defer rows.Close()

	var props []model.Property
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "postgres: scan property")
		}
		var p model.Property
		if err := json.Unmarshal(record, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal property")
		}
		props = append(props, p)
	}
	return props, eris.Wrap(rows.Err(), "postgres: list properties iterate")
}

func (s *PostgresStore) UpdateProperty(ctx context.Context, p model.Property) error {
	p.UpdatedAt = time.Now().UTC()

	record, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal property")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE properties SET name = $1, property_type = $2, value = $3, record = $4, updated_at = $5 WHERE id = $6`,
		p.Name, string(p.PropertyType), p.Value, record, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update property %s", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "property %s", p.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteProperty(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete property %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "property %s", id)
	}
	return nil
}

// propertyColumns matches the COPY column order used by BulkImportProperties.
var propertyColumns = []string{"id", "name", "property_type", "value", "record", "created_at", "updated_at"}

// BulkImportProperties upserts properties through the COPY protocol, replacing
// any existing rows with the same ID.
func (s *PostgresStore) BulkImportProperties(ctx context.Context, props []model.Property) (int64, error) {
	if len(props) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(props))
	for _, p := range props {
		p = prepareProperty(p, now)
		record, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal property %s", p.ID)
		}
		rows = append(rows, []any{p.ID, p.Name, string(p.PropertyType), p.Value, record, p.CreatedAt, p.UpdatedAt})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "properties",
		Columns:      propertyColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return n, eris.Wrap(err, "postgres: bulk import properties")
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a model.PropertyCreditAnalysis) (*model.PropertyCreditAnalysis, error) {
	a = prepareAnalysis(a, time.Now().UTC())

	record, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal analysis")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, property_id, risk_score, risk_level, record, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PropertyID, a.OverallRiskScore, string(a.OverallRiskLevel), record, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}
	return &a, nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.PropertyCreditAnalysis, error) {
	var record []byte
	err := s.pool.QueryRow(ctx, `SELECT record FROM analyses WHERE id = $1`, id).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return unmarshalAnalysis(record)
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.PropertyCreditAnalysis, error) {
	query := `SELECT record FROM analyses WHERE true`
	args := []any{}
	argIdx := 1

	if filter.PropertyID != "" {
		query += fmt.Sprintf(` AND property_id = $%d`, argIdx)
		args = append(args, filter.PropertyID)
		argIdx++
	}
	if filter.RiskLevel != "" {
		query += fmt.Sprintf(` AND risk_level = $%d`, argIdx)
		args = append(args, string(filter.RiskLevel))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.PropertyCreditAnalysis
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		a, err := unmarshalAnalysis(record)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) LatestAnalysisForProperty(ctx context.Context, propertyID string) (*model.PropertyCreditAnalysis, error) {
	var record []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM analyses WHERE property_id = $1 ORDER BY created_at DESC LIMIT 1`,
		propertyID,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", propertyID)
		}
		return nil, eris.Wrapf(err, "postgres: latest analysis for property %s", propertyID)
	}
	return unmarshalAnalysis(record)
}

func (s *PostgresStore) Stats(ctx context.Context, since time.Time) (*AnalysisStats, error) {
	stats := &AnalysisStats{
		RiskLevelCounts: make(map[model.RiskLevel]int, 4),
		Since:           since,
	}
	for _, level := range model.RiskLevels() {
		stats.RiskLevelCounts[level] = 0
	}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(risk_score), 0) FROM analyses WHERE created_at >= $1`,
		since,
	).Scan(&stats.TotalAnalyses, &stats.AverageRiskScore)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats totals")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT risk_level, COUNT(*) FROM analyses WHERE created_at >= $1 GROUP BY risk_level`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats distribution")
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stats row")
		}
		stats.RiskLevelCounts[model.RiskLevel(level)] = count
	}
	return stats, eris.Wrap(rows.Err(), "postgres: stats iterate")
}

func unmarshalAnalysis(record []byte) (*model.PropertyCreditAnalysis, error) {
	var a model.PropertyCreditAnalysis
	if err := json.Unmarshal(record, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal analysis")
	}
	return &a, nil
}
