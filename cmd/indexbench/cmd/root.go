// Package cmd provides the CLI commands for indexbench.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indexbench/internal/bench"
	"github.com/Aman-CERP/indexbench/internal/config"
	"github.com/Aman-CERP/indexbench/internal/logging"
	"github.com/Aman-CERP/indexbench/internal/output"
	"github.com/Aman-CERP/indexbench/internal/profiling"
	"github.com/Aman-CERP/indexbench/internal/scanner"
	"github.com/Aman-CERP/indexbench/internal/store"
	"github.com/Aman-CERP/indexbench/internal/telemetry"
	"github.com/Aman-CERP/indexbench/pkg/version"
)

// app is the state shared by the commands of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFile    string
	debug      bool
	historyDB  string
	profile    profiling.Options

	cfg            *config.Config
	profiler       *profiling.Profiler
	loggingCleanup func()
}

// runFlags are the benchmark flags of the root command.
type runFlags struct {
	docs        int
	reps        int
	increment   int
	store       int
	corpus      string
	index       string
	engine      string
	batchSize   int
	metricsFile string
	record      bool
}

// NewRootCmd creates the root command. Running it without a subcommand runs
// the benchmark.
func NewRootCmd() *cobra.Command {
	a := &app{}
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "indexbench",
		Short: "Measure full-text index build throughput",
		Long: `indexbench builds a full-text index over a fixed corpus several times
and reports how long each build took, with the mean and a quarter-trimmed mean.

The corpus is every file whose name contains "article" in the subdirectories
of the corpus root, indexed in lexical path order.

Benchmark flags accept a single dash:
  indexbench -docs 5000 -reps 8 -increment 1000 -store 1`,
		Version:       version.Version,
		Args:          noPositionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBenchmark(cmd, f)
		},
	}

	cmd.SetVersionTemplate("indexbench version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return flagError(err, nil)
	})
	cmd.CompletionOptions.DisableDefaultCmd = true

	// Benchmark flags
	cmd.Flags().IntVar(&f.docs, "docs", bench.AllDocuments, "Documents per repetition (default: whole corpus)")
	cmd.Flags().IntVar(&f.reps, "reps", 1, "Number of repetitions")
	cmd.Flags().IntVar(&f.increment, "increment", 0, "Rotate the index writer every N documents (0: never)")
	cmd.Flags().IntVar(&f.store, "store", 0, "1: store body text with term vectors; 0: index it only")

	// Where and how
	cmd.Flags().StringVar(&f.corpus, "corpus", "", "Corpus root directory (default: extracted_corpus)")
	cmd.Flags().StringVar(&f.index, "index", "", "Index output directory (default: bench_index)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Indexing engine: bleve or sqlite")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Documents buffered per engine flush")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&f.record, "record", false, "Record the run in the history database")

	// Shared by every command
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./.indexbench.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.indexbench/logs/")
	cmd.PersistentFlags().StringVar(&a.historyDB, "history-db", "", "Run history database")
	cmd.PersistentFlags().StringVar(&a.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Mem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = a.start
	cmd.PersistentPostRunE = a.stop

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// Execute runs the root command with args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	setArgs(cmd, args)
	return cmd.ExecuteContext(context.Background())
}

// start loads configuration, then sets up logging and profiling.
func (a *app) start(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(".", a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.File = a.logFile
	}
	if cmd.Flags().Changed("history-db") {
		cfg.Telemetry.HistoryDB = a.historyDB
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:     cfg.Logging.Level,
		FilePath:  cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	}
	if a.debug {
		debugCfg := logging.DebugConfig()
		logCfg.Level = debugCfg.Level
		if logCfg.FilePath == "" {
			logCfg.FilePath = debugCfg.FilePath
		}
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if a.profile.Enabled() {
		p, err := profiling.Start(a.profile)
		if err != nil {
			a.loggingCleanup()
			a.loggingCleanup = nil
			return err
		}
		a.profiler = p
	}
	return nil
}

// stop ends profiling and closes the log file.
func (a *app) stop(_ *cobra.Command, _ []string) error {
	var err error
	if a.profiler != nil {
		err = a.profiler.Stop()
		a.profiler = nil
	}
	if a.loggingCleanup != nil {
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
	return err
}

// stopOnError runs stop when a command fails, since cobra skips
// PersistentPostRunE after a RunE error.
func (a *app) stopOnError(cmd *cobra.Command, errp *error) {
	if *errp != nil {
		_ = a.stop(cmd, nil)
	}
}

// runBenchmark applies flags over the loaded config and runs the benchmark.
// The report goes to stdout; progress and status lines go to stderr.
func (a *app) runBenchmark(cmd *cobra.Command, f *runFlags) (err error) {
	defer a.stopOnError(cmd, &err)

	cfg := a.cfg
	flags := cmd.Flags()

	if flags.Changed("docs") {
		cfg.Benchmark.Docs = f.docs
	}
	if flags.Changed("reps") {
		cfg.Benchmark.Reps = f.reps
	}
	if flags.Changed("increment") {
		cfg.Benchmark.Increment = f.increment
	}
	if flags.Changed("store") {
		cfg.Benchmark.Store = f.store != 0
	}
	if flags.Changed("corpus") {
		cfg.Corpus.Dir = f.corpus
	}
	if flags.Changed("index") {
		cfg.Index.Dir = f.index
	}
	if flags.Changed("engine") {
		cfg.Index.Engine = f.engine
	}
	if flags.Changed("batch-size") {
		cfg.Index.BatchSize = f.batchSize
	}
	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = f.metricsFile
	}
	if flags.Changed("record") {
		cfg.Telemetry.Record = f.record
	}

	engine, err := store.NewEngine(cfg.Index.Engine, store.EngineConfig{BatchSize: cfg.Index.BatchSize})
	if err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	var observer bench.Observer
	if cfg.Telemetry.MetricsFile != "" {
		metrics = telemetry.NewMetrics(engine.Name())
		observer = metrics
	}

	progress := output.NewProgress(cmd.ErrOrStderr())
	runner := bench.NewRunner(bench.Options{
		CorpusDir: cfg.Corpus.Dir,
		IndexDir:  cfg.Index.Dir,
		Engine:    engine,
		Config: bench.RunConfig{
			MaxDocuments:      cfg.Benchmark.Docs,
			Repetitions:       cfg.Benchmark.Reps,
			RotationIncrement: cfg.Benchmark.Increment,
			StoreBodyText:     cfg.Benchmark.Store,
		},
		Scan:     scanner.ScanOptions{Workers: cfg.Corpus.Workers},
		Out:      cmd.OutOrStdout(),
		Observer: observer,
		Progress: progress.Update,
	})

	ctx := cmd.Context()
	outcome, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	status := output.New(cmd.ErrOrStderr())
	if outcome.Config.MaxDocuments > outcome.CorpusSize {
		status.Warningf("Corpus has %d documents; %d per repetition were indexed by wrapping around",
			outcome.CorpusSize, outcome.Config.MaxDocuments)
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Telemetry.MetricsFile); err != nil {
			return err
		}
		slog.Info("metrics_written", slog.String("path", cfg.Telemetry.MetricsFile))
	}

	if cfg.Telemetry.Record {
		id, err := recordRun(ctx, cfg.Telemetry.HistoryDB, outcome)
		if err != nil {
			return err
		}
		status.Successf("Recorded run #%d in %s", id, cfg.Telemetry.HistoryDB)
	}
	return nil
}

// recordRun appends the outcome to the history database.
func recordRun(ctx context.Context, path string, outcome *bench.Outcome) (int64, error) {
	history, err := telemetry.OpenHistory(ctx, path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = history.Close() }()

	id, err := history.Record(ctx, telemetry.RunFromOutcome(outcome))
	if err != nil {
		return 0, err
	}
	slog.Info("run_recorded", slog.Int64("id", id), slog.String("history_db", path))
	return id, nil
}
