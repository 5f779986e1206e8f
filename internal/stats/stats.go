// Package stats aggregates repetition timings and prints the benchmark report.
package stats

import (
	"sort"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// RepetitionResult is the outcome of one timed repetition.
type RepetitionResult struct {
	// Repetition is the 1-based repetition number.
	Repetition int `json:"repetition"`

	// ElapsedSeconds is whole elapsed milliseconds divided by 1000.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// DocumentsIndexed is the document count reported by the finished index.
	DocumentsIndexed int `json:"documents_indexed"`

	// Rotations is the number of writer rotations performed.
	Rotations int `json:"rotations"`
}

// Aggregate summarizes the elapsed times of all repetitions.
type Aggregate struct {
	MeanSeconds        float64 `json:"mean_seconds"`
	TrimmedMeanSeconds float64 `json:"trimmed_mean_seconds"`
	Kept               int     `json:"kept"`
	Discarded          int     `json:"discarded"`
}

// Elapsed extracts the elapsed seconds of each result, in order.
func Elapsed(results []RepetitionResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.ElapsedSeconds
	}
	return out
}

// Summarize computes the mean and the quarter-trimmed mean of elapsed.
// A quarter of the values (n >> 2) is discarded from each end of the sorted
// list; with fewer than four values nothing is discarded.
// The input slice is not modified.
func Summarize(elapsed []float64) (Aggregate, error) {
	n := len(elapsed)
	if n == 0 {
		return Aggregate{}, benchErrors.ValidationError("no repetition timings to summarize", nil)
	}

	sorted := make([]float64, n)
	copy(sorted, elapsed)
	sort.Float64s(sorted)

	chop := n >> 2

	var total float64
	for _, v := range sorted {
		total += v
	}

	var trimmed float64
	for _, v := range sorted[chop : n-chop] {
		trimmed += v
	}
	kept := n - 2*chop

	return Aggregate{
		MeanSeconds:        total / float64(n),
		TrimmedMeanSeconds: trimmed / float64(kept),
		Kept:               kept,
		Discarded:          2 * chop,
	}, nil
}
