package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/document"
	"github.com/blevesearch/bleve/v2/index/scorch/mergeplan"
	"github.com/blevesearch/bleve/v2/mapping"
	index "github.com/blevesearch/bleve_index_api"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
	"github.com/Aman-CERP/indexbench/pkg/version"
)

const (
	// BleveEngineName is the factory name of the Bleve engine.
	BleveEngineName = "bleve"

	// WhitespaceAnalyzerName splits field text on whitespace only.
	WhitespaceAnalyzerName = "bench_whitespace"

	bleveModulePath = "github.com/blevesearch/bleve/v2"
	bleveMetaFile   = "index_meta.json"
)

// forceMerger is implemented by the scorch index behind bleve.Index.Advanced.
type forceMerger interface {
	ForceMerge(ctx context.Context, mo *mergeplan.MergePlanOptions) error
}

// BleveEngine is the Bleve v2 (scorch) indexing engine.
type BleveEngine struct {
	config EngineConfig
}

// NewBleveEngine creates a Bleve engine.
func NewBleveEngine(config EngineConfig) *BleveEngine {
	return &BleveEngine{config: config}
}

// Name implements Engine.
func (e *BleveEngine) Name() string {
	return "Bleve"
}

// Version implements Engine.
func (e *BleveEngine) Version() string {
	return version.ModuleVersion(bleveModulePath)
}

// Open implements Engine. Create mode replaces an existing Bleve index at path
// but refuses a directory that holds anything else.
func (e *BleveEngine) Open(ctx context.Context, path string, mode Mode) (Writer, error) {
	var idx bleve.Index
	var err error

	switch mode {
	case ModeCreate:
		if err := clearBleveDir(path); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, benchErrors.EngineError(fmt.Sprintf("failed to create directory %s", filepath.Dir(path)), err)
		}
		indexMapping, mapErr := createBenchMapping()
		if mapErr != nil {
			return nil, benchErrors.EngineError("failed to create index mapping", mapErr)
		}
		idx, err = bleve.New(path, indexMapping)
	case ModeAppend:
		if validErr := validateIndexIntegrity(path); validErr != nil {
			return nil, benchErrors.New(benchErrors.ErrCodeCorruptIndex,
				fmt.Sprintf("index at %s cannot be appended to", path), validErr)
		}
		idx, err = bleve.Open(path)
	default:
		return nil, benchErrors.ValidationError(fmt.Sprintf("unsupported open mode %s", mode), nil)
	}
	if err != nil {
		return nil, benchErrors.EngineError(fmt.Sprintf("failed to open index in %s mode", mode), err)
	}

	analyzer := idx.Mapping().AnalyzerNamed(WhitespaceAnalyzerName)
	if analyzer == nil {
		_ = idx.Close()
		return nil, benchErrors.New(benchErrors.ErrCodeCorruptIndex,
			fmt.Sprintf("index at %s has no %s analyzer", path, WhitespaceAnalyzerName), nil)
	}

	slog.Debug("bleve_writer_opened",
		slog.String("path", path),
		slog.String("mode", mode.String()))

	return &bleveWriter{
		index:     idx,
		path:      path,
		analyzer:  analyzer,
		batch:     idx.NewBatch(),
		batchSize: e.config.batchSize(),
	}, nil
}

// OpenReader implements Engine.
func (e *BleveEngine) OpenReader(ctx context.Context, path string) (Reader, error) {
	if err := validateIndexIntegrity(path); err != nil {
		return nil, benchErrors.New(benchErrors.ErrCodeCorruptIndex,
			fmt.Sprintf("index at %s cannot be read", path), err)
	}
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, benchErrors.EngineError("failed to open index for reading", err)
	}
	return &bleveReader{index: idx}, nil
}

// clearBleveDir removes path when it is empty or holds a Bleve index.
// Missing paths are left alone. Anything else is an error naming path.
func clearBleveDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return benchErrors.EngineError(fmt.Sprintf("failed to inspect index directory %s", path), err)
	}
	if !info.IsDir() {
		return benchErrors.EngineError(fmt.Sprintf("index path %s is not a directory", path), nil).
			WithSuggestion("point --index at a new or existing index directory")
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return benchErrors.EngineError(fmt.Sprintf("failed to read index directory %s", path), err)
	}
	if len(entries) > 0 {
		if _, err := os.Stat(filepath.Join(path, bleveMetaFile)); err != nil {
			return benchErrors.EngineError(
				fmt.Sprintf("refusing to replace %s: it is not empty and holds no Bleve index", path), nil).
				WithDetail("path", path).
				WithSuggestion("point --index at a new or existing index directory")
		}
	}

	if err := os.RemoveAll(path); err != nil {
		return benchErrors.EngineError(fmt.Sprintf("failed to clear index directory %s", path), err)
	}
	return nil
}

// createBenchMapping builds the mapping with the whitespace analyzer as default.
func createBenchMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(WhitespaceAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}

	indexMapping.DefaultAnalyzer = WhitespaceAnalyzerName
	return indexMapping, nil
}

// validateIndexIntegrity checks that a Bleve index exists and its metadata parses.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("index directory does not exist")
	}

	metaPath := filepath.Join(path, bleveMetaFile)
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s missing (corrupted index)", bleveMetaFile)
	}
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", bleveMetaFile, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty (corrupted)", bleveMetaFile)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", bleveMetaFile, err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("%s is corrupt: %w", bleveMetaFile, err)
	}

	return nil
}

// fieldIndexingOptions maps benchmark field options to Bleve options.
func fieldIndexingOptions(opts FieldOptions) index.FieldIndexingOptions {
	var o index.FieldIndexingOptions
	if opts.Index {
		o |= index.IndexField
	}
	if opts.Store {
		o |= index.StoreField
	}
	if opts.TermVectors {
		o |= index.IncludeTermVectors
	}
	return o
}

// bleveWriter buffers documents into a batch and flushes every batchSize adds.
type bleveWriter struct {
	mu        sync.Mutex
	index     bleve.Index
	path      string
	analyzer  analysis.Analyzer
	batch     *bleve.Batch
	batchSize int
	closed    bool
}

// AddDocument implements Writer.
func (w *bleveWriter) AddDocument(ctx context.Context, doc *Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return benchErrors.EngineError("index writer is closed", nil)
	}

	bdoc := document.NewDocument(doc.ID)
	for _, f := range doc.Fields {
		bdoc.AddField(document.NewTextFieldCustom(f.Name, nil, []byte(f.Value),
			fieldIndexingOptions(f.Options), w.analyzer))
	}

	if err := w.batch.IndexAdvanced(bdoc); err != nil {
		return benchErrors.EngineError(fmt.Sprintf("failed to index document %s", doc.ID), err)
	}

	if w.batch.Size() >= w.batchSize {
		return w.flushLocked(ctx)
	}
	return nil
}

// flushLocked executes the pending batch. Caller holds mu.
func (w *bleveWriter) flushLocked(ctx context.Context) error {
	if w.batch.Size() == 0 {
		return nil
	}
	if err := w.index.Batch(w.batch); err != nil {
		return benchErrors.EngineError("failed to execute batch", err)
	}
	w.batch.Reset()
	return nil
}

// Optimize implements Writer. Engines without a force merge treat it as a no-op.
func (w *bleveWriter) Optimize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return benchErrors.EngineError("index writer is closed", nil)
	}
	if err := w.flushLocked(ctx); err != nil {
		return err
	}

	advanced, err := w.index.Advanced()
	if err != nil {
		return benchErrors.EngineError("failed to access index internals", err)
	}
	merger, ok := advanced.(forceMerger)
	if !ok {
		slog.Debug("bleve_optimize_skipped", slog.String("reason", "index does not support force merge"))
		return nil
	}

	opts := mergeplan.DefaultMergePlanOptions
	opts.MaxSegmentsPerTier = 1
	if err := merger.ForceMerge(ctx, &opts); err != nil {
		return benchErrors.EngineError("failed to optimize index", err)
	}
	return nil
}

// DocumentCount implements Writer.
func (w *bleveWriter) DocumentCount(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, benchErrors.EngineError("index writer is closed", nil)
	}
	if err := w.flushLocked(ctx); err != nil {
		return 0, err
	}

	count, err := w.index.DocCount()
	if err != nil {
		return 0, benchErrors.EngineError("failed to count documents", err)
	}
	return count, nil
}

// Close implements Writer.
func (w *bleveWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.flushLocked(context.Background())
	if err := w.index.Close(); err != nil {
		return benchErrors.EngineError("failed to close index", err)
	}
	return flushErr
}

// bleveReader reads stored fields from a Bleve index.
type bleveReader struct {
	index bleve.Index
}

// StoredField implements Reader.
func (r *bleveReader) StoredField(ctx context.Context, id, field string) (string, bool, error) {
	doc, err := r.index.Document(id)
	if err != nil {
		return "", false, benchErrors.EngineError(fmt.Sprintf("failed to load document %s", id), err)
	}
	if doc == nil {
		return "", false, nil
	}

	var value string
	var found bool
	doc.VisitFields(func(f index.Field) {
		if !found && f.Name() == field {
			value = string(f.Value())
			found = true
		}
	})
	return value, found, nil
}

// DocumentCount implements Reader.
func (r *bleveReader) DocumentCount(ctx context.Context) (uint64, error) {
	count, err := r.index.DocCount()
	if err != nil {
		return 0, benchErrors.EngineError("failed to count documents", err)
	}
	return count, nil
}

// Close implements Reader.
func (r *bleveReader) Close() error {
	return r.index.Close()
}

// Verify interface implementation
var (
	_ Engine = (*BleveEngine)(nil)
	_ Writer = (*bleveWriter)(nil)
	_ Reader = (*bleveReader)(nil)
)
