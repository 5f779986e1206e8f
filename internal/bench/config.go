// Package bench runs the index-build benchmark: it scans the corpus once, then
// builds the index N times under a fixed document count and rotation policy,
// timing each build and reporting the aggregate.
package bench

import (
	"fmt"
	"strconv"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// AllDocuments makes MaxDocuments resolve to the corpus size.
const AllDocuments = -1

// RunConfig is the per-invocation benchmark configuration.
type RunConfig struct {
	// MaxDocuments is the number of documents each repetition indexes.
	// AllDocuments resolves to the corpus size. Larger than the corpus wraps around.
	MaxDocuments int `json:"max_documents"`

	// Repetitions is how many times the index is rebuilt.
	Repetitions int `json:"repetitions"`

	// RotationIncrement closes and reopens the writer every N documents.
	// Zero disables rotation.
	RotationIncrement int `json:"rotation_increment"`

	// StoreBodyText stores the body verbatim (with term vectors) instead of
	// indexing it only.
	StoreBodyText bool `json:"store_body_text"`
}

// DefaultRunConfig returns the configuration used when no flags are given.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxDocuments: AllDocuments,
		Repetitions:  1,
	}
}

// Validate checks the configuration before it is resolved against a corpus.
func (c RunConfig) Validate() error {
	if c.Repetitions < 1 {
		return benchErrors.ValidationError(
			fmt.Sprintf("repetitions must be at least 1, got %d", c.Repetitions), nil).
			WithDetail("reps", strconv.Itoa(c.Repetitions))
	}
	if c.MaxDocuments < AllDocuments {
		return benchErrors.ValidationError(
			fmt.Sprintf("document count must not be negative, got %d", c.MaxDocuments), nil).
			WithDetail("docs", strconv.Itoa(c.MaxDocuments))
	}
	if c.RotationIncrement < 0 {
		return benchErrors.ValidationError(
			fmt.Sprintf("rotation increment must not be negative, got %d", c.RotationIncrement), nil).
			WithDetail("increment", strconv.Itoa(c.RotationIncrement))
	}
	return nil
}

// Resolve validates the configuration and fills in the corpus-dependent
// defaults: AllDocuments becomes corpusSize and a zero increment becomes
// MaxDocuments + 1, which never triggers a rotation.
func (c RunConfig) Resolve(corpusSize int) (RunConfig, error) {
	if err := c.Validate(); err != nil {
		return c, err
	}

	resolved := c
	if resolved.MaxDocuments == AllDocuments {
		resolved.MaxDocuments = corpusSize
	}
	if resolved.MaxDocuments > 0 && corpusSize == 0 {
		return c, benchErrors.New(benchErrors.ErrCodeEmptyCorpus,
			fmt.Sprintf("corpus has no article files but %d documents were requested", resolved.MaxDocuments), nil).
			WithSuggestion("check that the corpus subdirectories contain files named *article*")
	}
	if resolved.RotationIncrement == 0 {
		resolved.RotationIncrement = resolved.MaxDocuments + 1
	}
	return resolved, nil
}

// ExpectedRotations returns the number of rotations a resolved configuration
// performs per repetition. A rotation never follows the final document.
func (c RunConfig) ExpectedRotations() int {
	if c.MaxDocuments <= 0 || c.RotationIncrement <= 0 {
		return 0
	}
	return (c.MaxDocuments - 1) / c.RotationIncrement
}
