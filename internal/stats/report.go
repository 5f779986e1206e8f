package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Aman-CERP/indexbench/pkg/version"
)

// secondsFormat renders seconds with grouping and two decimals (e.g. 1,234.50).
const secondsFormat = "#,###.##"

// Rule separates the report blocks.
var Rule = strings.Repeat("-", 51)

// Environment identifies what the benchmark ran on.
type Environment struct {
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version"`
	Runtime       string `json:"runtime"`
	Platform      string `json:"platform"`
}

// NewEnvironment describes the given engine on the current runtime and platform.
func NewEnvironment(engine, engineVersion string) Environment {
	return Environment{
		Engine:        engine,
		EngineVersion: engineVersion,
		Runtime:       version.Runtime(),
		Platform:      version.Platform(),
	}
}

// FormatSeconds formats seconds as #,##0.00.
func FormatSeconds(v float64) string {
	return humanize.FormatFloat(secondsFormat, v)
}

// Reporter prints benchmark output. Write errors on the console are ignored.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Header prints the opening rule.
func (r *Reporter) Header() {
	_, _ = fmt.Fprintln(r.out, Rule)
}

// Interim prints the line for one finished repetition.
func (r *Reporter) Interim(res RepetitionResult) {
	_, _ = fmt.Fprintf(r.out, "%d   Secs: %s  Docs: %d\n",
		res.Repetition, FormatSeconds(res.ElapsedSeconds), res.DocumentsIndexed)
}

// Final prints the environment and aggregate block.
func (r *Reporter) Final(env Environment, agg Aggregate) {
	_, _ = fmt.Fprintln(r.out, Rule)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", env.Engine, env.EngineVersion)
	_, _ = fmt.Fprintln(r.out, env.Runtime)
	_, _ = fmt.Fprintln(r.out, env.Platform)
	_, _ = fmt.Fprintf(r.out, "Mean: %s secs\n", FormatSeconds(agg.MeanSeconds))
	_, _ = fmt.Fprintf(r.out, "Truncated mean (%d kept, %d discarded): %s secs\n",
		agg.Kept, agg.Discarded, FormatSeconds(agg.TrimmedMeanSeconds))
	_, _ = fmt.Fprintln(r.out, Rule)
}
