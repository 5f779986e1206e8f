package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
	"github.com/Aman-CERP/indexbench/internal/scanner"
	"github.com/Aman-CERP/indexbench/internal/session"
	"github.com/Aman-CERP/indexbench/internal/stats"
	"github.com/Aman-CERP/indexbench/internal/store"
)

// State is the runner lifecycle state.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateRepeating
	StateReporting
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateRepeating:
		return "repeating"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Observer is notified as a run progresses. Metrics collectors implement it.
type Observer interface {
	// RepetitionFinished is called after each repetition's interim line.
	RepetitionFinished(result stats.RepetitionResult)

	// RunFinished is called once after the final report.
	RunFinished(agg stats.Aggregate)
}

// ProgressFunc receives the running document count of the current repetition.
// Time spent inside it is not counted toward the repetition's elapsed time.
type ProgressFunc func(rep, done, total int)

// Options configures a Runner.
type Options struct {
	// CorpusDir is the corpus root (default "extracted_corpus").
	CorpusDir string

	// IndexDir is where the index is built (default "bench_index").
	IndexDir string

	// Engine builds the index.
	Engine store.Engine

	// Config is the unresolved run configuration.
	Config RunConfig

	// Scan configures corpus discovery.
	Scan scanner.ScanOptions

	// Out receives the benchmark report. Defaults to io.Discard.
	Out io.Writer

	// Observer is optional.
	Observer Observer

	// Progress is optional.
	Progress ProgressFunc
}

// Outcome is a finished benchmark run.
type Outcome struct {
	Config      RunConfig                `json:"config"`
	CorpusSize  int                      `json:"corpus_size"`
	Results     []stats.RepetitionResult `json:"results"`
	Aggregate   stats.Aggregate          `json:"aggregate"`
	Environment stats.Environment        `json:"environment"`
	StartedAt   time.Time                `json:"started_at"`
}

// Runner drives one benchmark invocation. A Runner is single-use.
type Runner struct {
	opts     Options
	reporter *stats.Reporter
	state    State
	since    func(time.Time) time.Duration
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Runner{
		opts:     opts,
		reporter: stats.NewReporter(opts.Out),
		state:    StateIdle,
		since:    time.Since,
	}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Run executes the benchmark. Any error aborts the run; no final report is
// printed and the partial results are discarded.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	if r.state != StateIdle {
		return nil, benchErrors.New(benchErrors.ErrCodeInternal,
			fmt.Sprintf("runner cannot start from state %s", r.state), nil)
	}

	outcome, err := r.run(ctx)
	if err != nil {
		r.state = StateFailed
		slog.Error("benchmark_failed", slog.Any("error", benchErrors.FormatForLog(err)))
		return nil, err
	}
	r.state = StateDone
	return outcome, nil
}

func (r *Runner) run(ctx context.Context) (*Outcome, error) {
	if r.opts.Engine == nil {
		return nil, benchErrors.New(benchErrors.ErrCodeInternal, "no indexing engine configured", nil)
	}
	startedAt := time.Now()

	r.state = StateScanning
	corpus, err := scanner.Scan(ctx, r.opts.CorpusDir, &r.opts.Scan)
	if err != nil {
		return nil, err
	}

	cfg, err := r.opts.Config.Resolve(corpus.Len())
	if err != nil {
		return nil, err
	}

	lock := store.NewIndexLock(r.opts.IndexDir)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()
	slog.Debug("index_lock_acquired", slog.String("lock", lock.Path()))

	slog.Info("benchmark_started",
		slog.String("corpus", r.opts.CorpusDir),
		slog.Int("corpus_size", corpus.Len()),
		slog.String("index", r.opts.IndexDir),
		slog.String("engine", r.opts.Engine.Name()),
		slog.Int("docs", cfg.MaxDocuments),
		slog.Int("reps", cfg.Repetitions),
		slog.Int("increment", cfg.RotationIncrement),
		slog.Bool("store", cfg.StoreBodyText))

	r.state = StateRepeating
	r.reporter.Header()

	results := make([]stats.RepetitionResult, 0, cfg.Repetitions)
	for rep := 1; rep <= cfg.Repetitions; rep++ {
		res, err := r.runRepetition(ctx, rep, corpus, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, res)

		r.reporter.Interim(res)
		if r.opts.Observer != nil {
			r.opts.Observer.RepetitionFinished(res)
		}
	}

	r.state = StateReporting
	agg, err := stats.Summarize(stats.Elapsed(results))
	if err != nil {
		return nil, err
	}
	env := stats.NewEnvironment(r.opts.Engine.Name(), r.opts.Engine.Version())
	r.reporter.Final(env, agg)
	if r.opts.Observer != nil {
		r.opts.Observer.RunFinished(agg)
	}

	return &Outcome{
		Config:      cfg,
		CorpusSize:  corpus.Len(),
		Results:     results,
		Aggregate:   agg,
		Environment: env,
		StartedAt:   startedAt,
	}, nil
}

// runRepetition builds the index once. Documents are taken from the corpus in
// order, wrapping around until MaxDocuments have been added; the writer is
// rotated every RotationIncrement documents unless the last one was just added.
func (r *Runner) runRepetition(ctx context.Context, rep int, corpus *scanner.Corpus, cfg RunConfig) (stats.RepetitionResult, error) {
	start := time.Now()

	sess := session.New(r.opts.Engine, r.opts.IndexDir)
	if err := sess.Open(ctx, 0); err != nil {
		return stats.RepetitionResult{}, err
	}
	defer func() { _ = sess.Close() }()

	var paused time.Duration
	for sess.Added() < cfg.MaxDocuments {
		path := corpus.At(sess.Added() % corpus.Len())
		if err := sess.AddDocument(ctx, path, cfg.StoreBodyText); err != nil {
			return stats.RepetitionResult{}, err
		}
		soFar := sess.Added()

		if r.opts.Progress != nil {
			drawn := time.Now()
			r.opts.Progress(rep, soFar, cfg.MaxDocuments)
			paused += r.since(drawn)
		}
		if soFar >= cfg.MaxDocuments {
			break
		}
		if soFar%cfg.RotationIncrement == 0 {
			if err := sess.Rotate(ctx, soFar); err != nil {
				return stats.RepetitionResult{}, err
			}
		}
	}

	count, err := sess.Finish(ctx)
	if err != nil {
		return stats.RepetitionResult{}, err
	}

	res := stats.RepetitionResult{
		Repetition:       rep,
		ElapsedSeconds:   float64((r.since(start) - paused).Milliseconds()) / 1000,
		DocumentsIndexed: count,
		Rotations:        sess.Rotations(),
	}

	slog.Info("repetition_complete",
		slog.Int("repetition", rep),
		slog.Float64("elapsed_seconds", res.ElapsedSeconds),
		slog.Int("docs", res.DocumentsIndexed),
		slog.Int("rotations", res.Rotations))

	return res, nil
}
