// Package config loads indexbench configuration.
//
// Precedence, lowest first: built-in defaults, the project file
// (.indexbench.yaml or .indexbench.yml in the working directory, or an
// explicit --config path), INDEXBENCH_* environment variables. Command line
// flags are applied by the CLI on top of the loaded Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// CurrentVersion is the config schema version written by WriteYAML.
const CurrentVersion = 1

// File names searched in the working directory, in order.
const (
	FileName    = ".indexbench.yaml"
	AltFileName = ".indexbench.yml"
)

// Config is the complete indexbench configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Corpus    CorpusConfig    `yaml:"corpus" json:"corpus"`
	Index     IndexConfig     `yaml:"index" json:"index"`
	Benchmark BenchmarkConfig `yaml:"benchmark" json:"benchmark"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// CorpusConfig configures corpus discovery.
type CorpusConfig struct {
	// Dir is the corpus root (default: extracted_corpus).
	Dir string `yaml:"dir" json:"dir"`

	// Workers is the number of subdirectories listed concurrently (0 = NumCPU).
	Workers int `yaml:"workers" json:"workers"`
}

// IndexConfig configures where and how the index is built.
type IndexConfig struct {
	// Dir is the index output directory (default: bench_index).
	Dir string `yaml:"dir" json:"dir"`

	// Engine is the indexing engine: "bleve" (default) or "sqlite".
	Engine string `yaml:"engine" json:"engine"`

	// BatchSize is the number of documents an engine buffers per flush.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// BenchmarkConfig holds the run parameters. Flags override every field.
type BenchmarkConfig struct {
	// Docs caps documents per repetition; -1 means the whole corpus.
	Docs int `yaml:"docs" json:"docs"`

	// Reps is the number of repetitions.
	Reps int `yaml:"reps" json:"reps"`

	// Increment rotates the writer every N documents; 0 disables rotation.
	Increment int `yaml:"increment" json:"increment"`

	// Store keeps the body text stored with term vectors.
	Store bool `yaml:"store" json:"store"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// TelemetryConfig configures run metrics and history.
type TelemetryConfig struct {
	// MetricsFile is a Prometheus textfile written after each run. Empty disables it.
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`

	// Record appends every completed run to the history database.
	Record bool `yaml:"record" json:"record"`

	// HistoryDB is the SQLite run history path.
	HistoryDB string `yaml:"history_db" json:"history_db"`
}

// NewConfig returns a Config with every default applied.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Corpus: CorpusConfig{
			Dir: "extracted_corpus",
		},
		Index: IndexConfig{
			Dir:       "bench_index",
			Engine:    "bleve",
			BatchSize: 100,
		},
		Benchmark: BenchmarkConfig{
			Docs: -1,
			Reps: 1,
		},
		Logging: LoggingConfig{
			Level:     "warn",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Telemetry: TelemetryConfig{
			HistoryDB: DefaultHistoryPath(),
		},
	}
}

// DefaultHistoryPath returns ~/.indexbench/history.db, or a temp-dir path when
// the home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".indexbench", "history.db")
	}
	return filepath.Join(home, ".indexbench", "history.db")
}

// Load builds the configuration for a run started in dir. A non-empty
// explicit path must exist; otherwise the project file is optional.
func Load(dir, explicit string) (*Config, error) {
	cfg := NewConfig()

	path, err := findConfigFile(dir, explicit)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the config file to load, or "" when there is none.
func findConfigFile(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", benchErrors.New(benchErrors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", explicit), err).
				WithDetail("config", explicit)
		}
		return explicit, nil
	}

	for _, name := range []string{FileName, AltFileName} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// loadYAML decodes path over the current values. Keys absent from the file
// keep their current value; unknown keys are rejected.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return benchErrors.ConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return benchErrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("config", path)
	}
	return nil
}

// applyEnvOverrides applies INDEXBENCH_* environment variables.
// A variable that is set but malformed is a config error.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("INDEXBENCH_CORPUS_DIR"); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv("INDEXBENCH_INDEX_DIR"); v != "" {
		c.Index.Dir = v
	}
	if v := os.Getenv("INDEXBENCH_ENGINE"); v != "" {
		c.Index.Engine = v
	}
	if v := os.Getenv("INDEXBENCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("INDEXBENCH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("INDEXBENCH_METRICS_FILE"); v != "" {
		c.Telemetry.MetricsFile = v
	}
	if v := os.Getenv("INDEXBENCH_HISTORY_DB"); v != "" {
		c.Telemetry.HistoryDB = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"INDEXBENCH_BATCH_SIZE", &c.Index.BatchSize},
		{"INDEXBENCH_DOCS", &c.Benchmark.Docs},
		{"INDEXBENCH_REPS", &c.Benchmark.Reps},
		{"INDEXBENCH_INCREMENT", &c.Benchmark.Increment},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return benchErrors.ConfigError(fmt.Sprintf("%s must be an integer, got %q", e.name, v), err)
		}
		*e.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"INDEXBENCH_STORE", &c.Benchmark.Store},
		{"INDEXBENCH_RECORD", &c.Telemetry.Record},
	}
	for _, e := range bools {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return benchErrors.ConfigError(fmt.Sprintf("%s must be a boolean, got %q", e.name, v), err)
		}
		*e.dst = b
	}
	return nil
}

// Validate checks the configuration for values no run could use.
func (c *Config) Validate() error {
	if c.Corpus.Dir == "" {
		return benchErrors.ConfigError("corpus.dir must not be empty", nil)
	}
	if c.Corpus.Workers < 0 {
		return benchErrors.ConfigError(fmt.Sprintf("corpus.workers must be non-negative, got %d", c.Corpus.Workers), nil)
	}
	if c.Index.Dir == "" {
		return benchErrors.ConfigError("index.dir must not be empty", nil)
	}

	validEngines := map[string]bool{"bleve": true, "sqlite": true}
	if !validEngines[strings.ToLower(c.Index.Engine)] {
		return benchErrors.ConfigError(fmt.Sprintf("index.engine must be 'bleve' or 'sqlite', got %s", c.Index.Engine), nil)
	}
	if c.Index.BatchSize < 1 {
		return benchErrors.ConfigError(fmt.Sprintf("index.batch_size must be at least 1, got %d", c.Index.BatchSize), nil)
	}

	if c.Benchmark.Docs < -1 {
		return benchErrors.ConfigError(fmt.Sprintf("benchmark.docs must be -1 or more, got %d", c.Benchmark.Docs), nil)
	}
	if c.Benchmark.Reps < 1 {
		return benchErrors.ConfigError(fmt.Sprintf("benchmark.reps must be at least 1, got %d", c.Benchmark.Reps), nil)
	}
	if c.Benchmark.Increment < 0 {
		return benchErrors.ConfigError(fmt.Sprintf("benchmark.increment must be non-negative, got %d", c.Benchmark.Increment), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return benchErrors.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}
	if c.Logging.MaxSizeMB < 1 || c.Logging.MaxFiles < 1 {
		return benchErrors.ConfigError("logging.max_size_mb and logging.max_files must be at least 1", nil)
	}

	if c.Telemetry.Record && c.Telemetry.HistoryDB == "" {
		return benchErrors.ConfigError("telemetry.history_db must be set when telemetry.record is enabled", nil)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
