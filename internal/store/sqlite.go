package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/cre-analytics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	property_type TEXT NOT NULL,
	value         REAL NOT NULL DEFAULT 0,
	record        TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL,
	risk_score  REAL NOT NULL,
	risk_level  TEXT NOT NULL,
	record      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
CREATE INDEX IF NOT EXISTS idx_properties_value ON properties(value);
CREATE INDEX IF NOT EXISTS idx_analyses_property_id ON analyses(property_id);
CREATE INDEX IF NOT EXISTS idx_analyses_risk_level ON analyses(risk_level);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProperty(ctx context.Context, p model.Property) (*model.Property, error) {
	p = prepareProperty(p, time.Now().UTC())

	record, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal property")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO properties (id, name, property_type, value, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.PropertyType), p.Value, string(record), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert property")
	}
	return &p, nil
}

func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM properties WHERE id = ?`, id)

	var record string
	if err := row.Scan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "property %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get property %s", id)
	}

	var p model.Property
	if err := json.Unmarshal([]byte(record), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal property")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, error) {
	query := `SELECT record FROM properties WHERE 1=1`
	var args []any

	if filter.PropertyType != "" {
		query += ` AND property_type = ?`
		args = append(args, string(filter.PropertyType))
	}
	if filter.MinValue > 0 {
		query += ` AND value >= ?`
		args = append(args, filter.MinValue)
	}
	if filter.MaxValue > 0 {
		query += ` AND value <= ?`
		args = append(args, filter.MaxValue)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list properties")
	}
	defer rows.Close()

	var props []model.Property
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan property")
		}
		var p model.Property
		if err := json.Unmarshal([]byte(record), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal property")
		}
		props = append(props, p)
	}
	return props, eris.Wrap(rows.Err(), "sqlite: list properties iterate")
}

func (s *SQLiteStore) UpdateProperty(ctx context.Context, p model.Property) error {
	p.UpdatedAt = time.Now().UTC()

	record, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal property")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE properties SET name = ?, property_type = ?, value = ?, record = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(p.PropertyType), p.Value, string(record), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update property %s", p.ID)
	}
	return checkRowsAffected(res, "property", p.ID)
}

func (s *SQLiteStore) DeleteProperty(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete property %s", id)
	}
	return checkRowsAffected(res, "property", id)
}

// BulkImportProperties inserts properties in one transaction, replacing any
// existing rows with the same ID.
func (s *SQLiteStore) BulkImportProperties(ctx context.Context, props []model.Property) (int64, error) {
	if len(props) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk import")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO properties (id, name, property_type, value, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk import")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var count int64
	for _, p := range props {
		p = prepareProperty(p, now)
		record, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal property %s", p.ID)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, string(p.PropertyType), p.Value, string(record), p.CreatedAt, p.UpdatedAt); err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk insert property %s", p.ID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk import")
	}
	return count, nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a model.PropertyCreditAnalysis) (*model.PropertyCreditAnalysis, error) {
	a = prepareAnalysis(a, time.Now().UTC())

	record, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, property_id, risk_score, risk_level, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PropertyID, a.OverallRiskScore, string(a.OverallRiskLevel), string(record), a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
	}
	return &a, nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.PropertyCreditAnalysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM analyses WHERE id = ?`, id)
	return scanAnalysisRecord(row, id)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.PropertyCreditAnalysis, error) {
	query := `SELECT record FROM analyses WHERE 1=1`
	var args []any

	if filter.PropertyID != "" {
		query += ` AND property_id = ?`
		args = append(args, filter.PropertyID)
	}
	if filter.RiskLevel != "" {
		query += ` AND risk_level = ?`
		args = append(args, string(filter.RiskLevel))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.PropertyCreditAnalysis
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		var a model.PropertyCreditAnalysis
		if err := json.Unmarshal([]byte(record), &a); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) LatestAnalysisForProperty(ctx context.Context, propertyID string) (*model.PropertyCreditAnalysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record FROM analyses WHERE property_id = ? ORDER BY created_at DESC LIMIT 1`,
		propertyID,
	)
	return scanAnalysisRecord(row, propertyID)
}

func (s *SQLiteStore) Stats(ctx context.Context, since time.Time) (*AnalysisStats, error) {
	stats := &AnalysisStats{
		RiskLevelCounts: make(map[model.RiskLevel]int, 4),
		Since:           since,
	}
	for _, level := range model.RiskLevels() {
		stats.RiskLevelCounts[level] = 0
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(risk_score), 0) FROM analyses WHERE created_at >= ?`,
		since,
	)
	if err := row.Scan(&stats.TotalAnalyses, &stats.AverageRiskScore); err != nil {
		return nil, eris.Wrap(err, "sqlite: stats totals")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT risk_level, COUNT(*) FROM analyses WHERE created_at >= ? GROUP BY risk_level`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats distribution")
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stats row")
		}
		stats.RiskLevelCounts[model.RiskLevel(level)] = count
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: stats iterate")
}

// helpers

// prepareProperty fills identity and lifecycle defaults before a write.
func prepareProperty(p model.Property, now time.Time) model.Property {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.PropertyStatusActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return p
}

// prepareAnalysis fills identity defaults before a write.
func prepareAnalysis(a model.PropertyCreditAnalysis, now time.Time) model.PropertyCreditAnalysis {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	return a
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysisRecord(row scannable, id string) (*model.PropertyCreditAnalysis, error) {
	var record string
	if err := row.Scan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "analysis %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}

	var a model.PropertyCreditAnalysis
	if err := json.Unmarshal([]byte(record), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
	}
	return &a, nil
}
