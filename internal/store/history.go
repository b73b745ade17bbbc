package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver

	"homesoc/internal/engine"
	"homesoc/internal/snapshot"
)

// History mirrors flattened snapshot rows into an embedded DuckDB file so the
// web layer can run trend queries without re-parsing the JSONL log. The JSONL
// log stays the canonical record; mirror failures are advisory.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the DuckDB file at path. An empty path
// opens an in-memory database, useful for tests.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	// DuckDB is embedded; serial access is safer for writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &History{db: db}, nil
}

// Migrate creates the snapshot table when absent.
func (h *History) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS snapshots (
			collected_at            TIMESTAMP NOT NULL,
			security_score          INTEGER NOT NULL,
			cpu_load                DOUBLE,
			memory_used_pct         DOUBLE,
			established_connections INTEGER,
			failed_logins           INTEGER
		)`
	if _, err := h.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate history: %w", err)
	}
	return nil
}

// Insert flattens one snapshot into a history row. Metrics that were
// unavailable this cycle are stored as NULL.
func (h *History) Insert(ctx context.Context, snap snapshot.Snapshot) error {
	ts, err := time.ParseInLocation(snapshot.TimeFormat, snap.Timestamp, time.Local)
	if err != nil {
		return fmt.Errorf("parse snapshot timestamp: %w", err)
	}

	nullable := func(metric string) any {
		if v, ok := snap.MetricValue(metric); ok {
			return v
		}
		return nil
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(collected_at, security_score, cpu_load, memory_used_pct, established_connections, failed_logins)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ts,
		snap.SecurityScore,
		nullable(engine.MetricCPULoad),
		nullable(engine.MetricMemoryUsedPct),
		nullable(engine.MetricEstablishedConns),
		nullable(engine.MetricFailedLogins),
	)
	if err != nil {
		return fmt.Errorf("insert history row: %w", err)
	}
	return nil
}

// TrendPoint is one flattened row for charting.
type TrendPoint struct {
	CollectedAt   time.Time `json:"collected_at"`
	SecurityScore int       `json:"security_score"`
	CPULoad       float64   `json:"cpu_load"`
	MemoryUsedPct float64   `json:"memory_used_pct"`
	Connections   int       `json:"connections"`
	FailedLogins  int       `json:"failed_logins"`
}

// Trends returns the most recent limit rows, oldest first.
func (h *History) Trends(ctx context.Context, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT collected_at, security_score, cpu_load, memory_used_pct, established_connections, failed_logins
		FROM (
			SELECT * FROM snapshots ORDER BY collected_at DESC LIMIT ?
		) ORDER BY collected_at ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trends: %w", err)
	}
	defer rows.Close()

	points := []TrendPoint{}
	for rows.Next() {
		var p TrendPoint
		var cpuLoad, memPct sql.NullFloat64
		var conns, fails sql.NullInt64
		if err := rows.Scan(&p.CollectedAt, &p.SecurityScore, &cpuLoad, &memPct, &conns, &fails); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		p.CPULoad = cpuLoad.Float64
		p.MemoryUsedPct = memPct.Float64
		p.Connections = int(conns.Int64)
		p.FailedLogins = int(fails.Int64)
		points = append(points, p)
	}
	return points, rows.Err()
}

// Close releases database resources.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
