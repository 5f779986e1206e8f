package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

const (
	// SQLiteEngineName is the factory name of the SQLite FTS5 engine.
	SQLiteEngineName = "sqlite"

	// SQLiteIndexFile is the database file created inside the index directory.
	SQLiteIndexFile = "index.db"
)

// SQLiteEngine indexes documents into an SQLite FTS5 table.
// Indexed fields go to a contentless FTS5 table; stored fields are kept in a
// regular table keyed by document ID.
type SQLiteEngine struct {
	config EngineConfig

	versionOnce sync.Once
	version     string
}

// NewSQLiteEngine creates an SQLite FTS5 engine.
func NewSQLiteEngine(config EngineConfig) *SQLiteEngine {
	return &SQLiteEngine{config: config}
}

// Name implements Engine.
func (e *SQLiteEngine) Name() string {
	return "SQLite FTS5"
}

// Version implements Engine. It reports the linked SQLite library version.
func (e *SQLiteEngine) Version() string {
	e.versionOnce.Do(func() {
		e.version = "unknown"
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return
		}
		defer db.Close()
		var v string
		if err := db.QueryRow("SELECT sqlite_version()").Scan(&v); err == nil {
			e.version = v
		}
	})
	return e.version
}

// Open implements Engine.
func (e *SQLiteEngine) Open(ctx context.Context, path string, mode Mode) (Writer, error) {
	dbPath := filepath.Join(path, SQLiteIndexFile)

	switch mode {
	case ModeCreate:
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return nil, benchErrors.EngineError(fmt.Sprintf("failed to clear index file %s", p), err)
			}
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, benchErrors.EngineError(fmt.Sprintf("failed to create directory %s", path), err)
		}
	case ModeAppend:
		if validErr := validateSQLiteIntegrity(dbPath); validErr != nil {
			return nil, benchErrors.New(benchErrors.ErrCodeCorruptIndex,
				fmt.Sprintf("index at %s cannot be appended to", path), validErr)
		}
	default:
		return nil, benchErrors.ValidationError(fmt.Sprintf("unsupported open mode %s", mode), nil)
	}

	db, err := openSQLite(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if mode == ModeCreate {
		if err := initSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, benchErrors.EngineError("failed to initialize schema", err)
		}
	}

	slog.Debug("sqlite_writer_opened",
		slog.String("path", dbPath),
		slog.String("mode", mode.String()))

	return &sqliteWriter{
		db:        db,
		path:      dbPath,
		batchSize: e.config.batchSize(),
	}, nil
}

// OpenReader implements Engine.
func (e *SQLiteEngine) OpenReader(ctx context.Context, path string) (Reader, error) {
	dbPath := filepath.Join(path, SQLiteIndexFile)
	if err := validateSQLiteIntegrity(dbPath); err != nil {
		return nil, benchErrors.New(benchErrors.ErrCodeCorruptIndex,
			fmt.Sprintf("index at %s cannot be read", path), err)
	}
	db, err := openSQLite(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteReader{db: db}, nil
}

// openSQLite opens the database with a single connection and WAL pragmas.
func openSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	dsn := dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, benchErrors.EngineError("failed to open database", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// DSN params may be ignored by modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, benchErrors.EngineError("failed to set pragma", err)
		}
	}
	return db, nil
}

// initSchema creates the FTS5 table and the document and stored field tables.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Contentless: values are tokenized but not kept
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_fields USING fts5(
		value,
		content='',
		tokenize='unicode61'
	);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS stored_fields (
		doc_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (doc_id, name)
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// validateSQLiteIntegrity checks that the database exists, passes a quick
// integrity check, and carries the FTS5 table.
func validateSQLiteIntegrity(dbPath string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist", filepath.Base(dbPath))
	}

	db, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name IN ('fts_fields', 'documents', 'stored_fields')`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count != 3 {
		return fmt.Errorf("index tables missing")
	}

	return nil
}

// sqliteWriter adds documents inside a transaction committed every batchSize adds.
type sqliteWriter struct {
	mu        sync.Mutex
	db        *sql.DB
	path      string
	tx        *sql.Tx
	pending   int
	batchSize int
	closed    bool
}

// AddDocument implements Writer. An existing document with the same ID is replaced.
func (w *sqliteWriter) AddDocument(ctx context.Context, doc *Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return benchErrors.EngineError("index writer is closed", nil)
	}

	if w.tx == nil {
		tx, err := w.db.BeginTx(ctx, nil)
		if err != nil {
			return benchErrors.EngineError("failed to begin transaction", err)
		}
		w.tx = tx
	}

	if err := w.insertLocked(ctx, doc); err != nil {
		_ = w.tx.Rollback()
		w.tx = nil
		w.pending = 0
		return benchErrors.EngineError(fmt.Sprintf("failed to index document %s", doc.ID), err)
	}

	w.pending++
	if w.pending >= w.batchSize {
		return w.commitLocked()
	}
	return nil
}

func (w *sqliteWriter) insertLocked(ctx context.Context, doc *Document) error {
	if _, err := w.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents(doc_id) VALUES (?)`, doc.ID); err != nil {
		return err
	}
	if _, err := w.tx.ExecContext(ctx,
		`DELETE FROM stored_fields WHERE doc_id = ?`, doc.ID); err != nil {
		return err
	}

	for _, f := range doc.Fields {
		if f.Options.Index {
			if _, err := w.tx.ExecContext(ctx,
				`INSERT INTO fts_fields(value) VALUES (?)`, f.Value); err != nil {
				return err
			}
		}
		if f.Options.Store {
			if _, err := w.tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO stored_fields(doc_id, name, value) VALUES (?, ?, ?)`,
				doc.ID, f.Name, f.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// commitLocked commits the open transaction, if any. Caller holds mu.
func (w *sqliteWriter) commitLocked() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	w.pending = 0
	if err != nil {
		return benchErrors.EngineError("failed to commit batch", err)
	}
	return nil
}

// Optimize implements Writer by merging the FTS5 b-trees.
func (w *sqliteWriter) Optimize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return benchErrors.EngineError("index writer is closed", nil)
	}
	if err := w.commitLocked(); err != nil {
		return err
	}
	if _, err := w.db.ExecContext(ctx, `INSERT INTO fts_fields(fts_fields) VALUES('optimize')`); err != nil {
		return benchErrors.EngineError("failed to optimize index", err)
	}
	return nil
}

// DocumentCount implements Writer.
func (w *sqliteWriter) DocumentCount(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, benchErrors.EngineError("index writer is closed", nil)
	}

	var count uint64
	var err error
	if w.tx != nil {
		err = w.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	} else {
		err = w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	}
	if err != nil {
		return 0, benchErrors.EngineError("failed to count documents", err)
	}
	return count, nil
}

// Close implements Writer. Forces a WAL checkpoint before closing.
func (w *sqliteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	commitErr := w.commitLocked()
	_, _ = w.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	if err := w.db.Close(); err != nil {
		return benchErrors.EngineError("failed to close database", err)
	}
	return commitErr
}

// sqliteReader reads stored fields from the index database.
type sqliteReader struct {
	db *sql.DB
}

// StoredField implements Reader.
func (r *sqliteReader) StoredField(ctx context.Context, id, field string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM stored_fields WHERE doc_id = ? AND name = ?`, id, field).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, benchErrors.EngineError(fmt.Sprintf("failed to load document %s", id), err)
	}
	return value, true, nil
}

// DocumentCount implements Reader.
func (r *sqliteReader) DocumentCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, benchErrors.EngineError("failed to count documents", err)
	}
	return count, nil
}

// Close implements Reader.
func (r *sqliteReader) Close() error {
	return r.db.Close()
}

// Verify interface implementation at compile time
var (
	_ Engine = (*SQLiteEngine)(nil)
	_ Writer = (*sqliteWriter)(nil)
	_ Reader = (*sqliteReader)(nil)
)
