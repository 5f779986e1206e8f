package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/indexbench/internal/bench"
	"github.com/Aman-CERP/indexbench/internal/stats"
)

// DefaultHistoryLimit is the number of runs List returns when limit <= 0.
const DefaultHistoryLimit = 20

// Run is one recorded benchmark run.
type Run struct {
	ID                 int64                    `json:"id"`
	StartedAt          time.Time                `json:"started_at"`
	Engine             string                   `json:"engine"`
	EngineVersion      string                   `json:"engine_version"`
	Runtime            string                   `json:"runtime"`
	Platform           string                   `json:"platform"`
	CorpusSize         int                      `json:"corpus_size"`
	Docs               int                      `json:"docs"`
	Reps               int                      `json:"reps"`
	Increment          int                      `json:"increment"`
	Store              bool                     `json:"store"`
	MeanSeconds        float64                  `json:"mean_seconds"`
	TrimmedMeanSeconds float64                  `json:"trimmed_mean_seconds"`
	Kept               int                      `json:"kept"`
	Discarded          int                      `json:"discarded"`
	Results            []stats.RepetitionResult `json:"results"`
}

// RunFromOutcome converts a finished benchmark into a history record.
func RunFromOutcome(o *bench.Outcome) Run {
	return Run{
		StartedAt:          o.StartedAt.UTC(),
		Engine:             o.Environment.Engine,
		EngineVersion:      o.Environment.EngineVersion,
		Runtime:            o.Environment.Runtime,
		Platform:           o.Environment.Platform,
		CorpusSize:         o.CorpusSize,
		Docs:               o.Config.MaxDocuments,
		Reps:               o.Config.Repetitions,
		Increment:          o.Config.RotationIncrement,
		Store:              o.Config.StoreBodyText,
		MeanSeconds:        o.Aggregate.MeanSeconds,
		TrimmedMeanSeconds: o.Aggregate.TrimmedMeanSeconds,
		Kept:               o.Aggregate.Kept,
		Discarded:          o.Aggregate.Discarded,
		Results:            o.Results,
	}
}

// HistoryStore keeps completed runs in an SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(ctx context.Context, path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := initHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &HistoryStore{db: db}, nil
}

func initHistorySchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		engine TEXT NOT NULL,
		engine_version TEXT NOT NULL,
		runtime TEXT NOT NULL,
		platform TEXT NOT NULL,
		corpus_size INTEGER NOT NULL,
		docs INTEGER NOT NULL,
		reps INTEGER NOT NULL,
		increment INTEGER NOT NULL,
		store INTEGER NOT NULL,
		mean_seconds REAL NOT NULL,
		trimmed_mean_seconds REAL NOT NULL,
		kept INTEGER NOT NULL,
		discarded INTEGER NOT NULL,
		results TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// Record appends a run and returns its ID.
func (s *HistoryStore) Record(ctx context.Context, run Run) (int64, error) {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return 0, fmt.Errorf("encode repetition results: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, engine, engine_version, runtime, platform,
			corpus_size, docs, reps, increment, store,
			mean_seconds, trimmed_mean_seconds, kept, discarded, results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Engine, run.EngineVersion, run.Runtime, run.Platform,
		run.CorpusSize, run.Docs, run.Reps, run.Increment, run.Store,
		run.MeanSeconds, run.TrimmedMeanSeconds, run.Kept, run.Discarded, string(results))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, engine, engine_version, runtime, platform,
			corpus_size, docs, reps, increment, store,
			mean_seconds, trimmed_mean_seconds, kept, discarded, results
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, results string
		if err := rows.Scan(&r.ID, &startedAt, &r.Engine, &r.EngineVersion, &r.Runtime, &r.Platform,
			&r.CorpusSize, &r.Docs, &r.Reps, &r.Increment, &r.Store,
			&r.MeanSeconds, &r.TrimmedMeanSeconds, &r.Kept, &r.Discarded, &results); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &r.Results); err != nil {
			return nil, fmt.Errorf("decode repetition results: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
