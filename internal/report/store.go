package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	veilotel "github.com/veildata/veil/internal/otel"
	"github.com/veildata/veil/internal/redact"
)

var tracer = veilotel.Tracer("github.com/veildata/veil/internal/report")

// Store persists one RunRecord per completed redaction run in SQLite.
type Store struct {
	db *sql.DB
}

// RunRecord is the persisted summary of one run.
type RunRecord struct {
	ID             string                  `json:"id"`
	Timestamp      time.Time               `json:"timestamp"`
	Provider       string                  `json:"provider"`
	Options        redact.Options          `json:"options"`
	Lines          int                     `json:"lines"`
	Counts         map[redact.Category]int `json:"counts"`
	FilteredCounts map[redact.Category]int `json:"filtered_counts,omitempty"`
}

// NewStore opens (and if needed creates) the run-history database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening report database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		provider TEXT NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating report schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one run record. A missing ID gets a fresh UUID and a
// zero timestamp is set to now (UTC).
func (s *Store) Save(ctx context.Context, rec *RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	ctx, span := tracer.Start(ctx, "report.save",
		trace.WithAttributes(attribute.String("run.id", rec.ID)))
	defer span.End()

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, timestamp, provider, record_json) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Timestamp, rec.Provider, string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("storing run record: %w", err)
	}
	return nil
}

// List returns up to limit run records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	ctx, span := tracer.Start(ctx, "report.list")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_json FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		var rec RunRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling run record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Purge deletes run records older than cutoff and returns how many went.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "report.purge")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging runs: %w", err)
	}
	span.SetAttributes(attribute.Int64("report.purged", n))
	return n, nil
}
