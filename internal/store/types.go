// Package store provides the indexing engine capability used by the benchmark.
// An Engine opens writers in create or append mode; a Writer accepts documents
// built from fields with explicit store/index/term-vector options. Bleve v2 and
// SQLite FTS5 implementations are provided.
package store

import (
	"context"
	"fmt"
)

// Mode selects how a writer opens the index at a path.
type Mode int

const (
	// ModeCreate discards any existing index at the path and starts fresh.
	ModeCreate Mode = iota
	// ModeAppend opens the existing index and adds to it.
	ModeAppend
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// FieldOptions controls how a field is handled by the engine.
type FieldOptions struct {
	// Store keeps the original value retrievable from the index.
	Store bool
	// Index makes the value searchable (tokenized).
	Index bool
	// TermVectors keeps per-document positions and offsets.
	TermVectors bool
}

// Field is one named value of a document.
type Field struct {
	Name    string
	Value   string
	Options FieldOptions
}

// Document is a set of fields under a unique ID.
type Document struct {
	ID     string
	Fields []Field
}

// NewDocument creates an empty document with the given ID.
func NewDocument(id string) *Document {
	return &Document{ID: id}
}

// AddField appends a field to the document.
func (d *Document) AddField(name, content string, opts FieldOptions) {
	d.Fields = append(d.Fields, Field{Name: name, Value: content, Options: opts})
}

// Field returns the first field with the given name.
func (d *Document) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Engine is an external indexing engine behind the benchmark.
type Engine interface {
	// Name returns the engine name shown in the final report (e.g. "Bleve").
	Name() string

	// Version returns the engine version string.
	Version() string

	// Open returns a writer on the index at path.
	Open(ctx context.Context, path string, mode Mode) (Writer, error)

	// OpenReader opens the index at path for stored field retrieval.
	OpenReader(ctx context.Context, path string) (Reader, error)
}

// Writer is one open writer handle on an index.
type Writer interface {
	// AddDocument adds a document. Documents may be buffered until Close.
	AddDocument(ctx context.Context, doc *Document) error

	// Optimize merges the index down as far as the engine supports.
	Optimize(ctx context.Context) error

	// DocumentCount returns the total number of documents in the index,
	// including documents still buffered by this writer.
	DocumentCount(ctx context.Context) (uint64, error)

	// Close flushes buffered documents durably and releases the handle.
	// Close is idempotent.
	Close() error
}

// Reader retrieves stored fields from a built index.
type Reader interface {
	// StoredField returns the stored value of field on document id.
	// The boolean is false when the document or stored field does not exist.
	StoredField(ctx context.Context, id, field string) (string, bool, error)

	// DocumentCount returns the number of documents in the index.
	DocumentCount(ctx context.Context) (uint64, error)

	// Close releases the reader.
	Close() error
}

// EngineConfig configures engine construction.
type EngineConfig struct {
	// BatchSize is the number of documents buffered before a flush (default 100).
	BatchSize int
}

// DefaultBatchSize is the number of documents buffered per flush.
const DefaultBatchSize = 100

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{BatchSize: DefaultBatchSize}
}

func (c EngineConfig) batchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}
