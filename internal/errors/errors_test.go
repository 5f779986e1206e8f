package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original engine error
	originalErr := errors.New("disk full")

	// When: wrapping with BenchError
	benchErr := EngineError("failed to close writer", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, benchErr)
	assert.Equal(t, originalErr, errors.Unwrap(benchErr))
	assert.True(t, errors.Is(benchErr, originalErr))
}

func TestBenchError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *BenchError
		expected string
	}{
		{
			name:     "unknown argument",
			err:      UnknownArgument("-verbose"),
			expected: "[ERR_104_UNKNOWN_ARGUMENT] Unknown argument: -verbose",
		},
		{
			name:     "corpus not found",
			err:      CorpusNotFound("extracted_corpus", nil),
			expected: "[ERR_201_CORPUS_NOT_FOUND] Can't find 'extracted_corpus' directory",
		},
		{
			name:     "document read with cause",
			err:      DocumentRead("a/article1", "Failed to read title", errors.New("EOF")),
			expected: "[ERR_206_DOCUMENT_READ] Failed to read title: a/article1: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestBenchError_Is_MatchesByCode(t *testing.T) {
	// Given: two corpus errors with different messages
	err := CorpusNotFound("one", nil)

	// Then: both match the sentinel by code
	assert.True(t, errors.Is(err, ErrCorpusNotFound))
	assert.False(t, errors.Is(err, ErrDocumentRead))
}

func TestBenchError_Is_ThroughFmtWrapping(t *testing.T) {
	// Given: a BenchError wrapped with fmt.Errorf
	err := fmt.Errorf("repetition 2: %w", DocumentRead("x/article", "Failed to read title", nil))

	// Then: errors.Is and GetCode see through the wrapping
	assert.True(t, errors.Is(err, ErrDocumentRead))
	assert.Equal(t, ErrCodeDocumentRead, GetCode(err))
	assert.Equal(t, CategoryIO, GetCategory(err))
	assert.True(t, IsFatal(err))
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		expected Category
	}{
		{ErrCodeUnknownArgument, CategoryConfig},
		{ErrCodeCorpusNotFound, CategoryIO},
		{ErrCodeIndexLocked, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeEmptyCorpus, CategoryValidation},
		{ErrCodeEngineFailed, CategoryInternal},
		{"bad", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, categoryFromCode(tt.code))
		})
	}
}

func TestSeverity_BenchmarkErrorsAreFatal(t *testing.T) {
	assert.True(t, IsFatal(UnknownArgument("-x")))
	assert.True(t, IsFatal(CorpusNotFound("c", nil)))
	assert.True(t, IsFatal(DocumentRead("p", "read failed", nil)))
	assert.False(t, IsFatal(ConfigError("bad yaml", nil)))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail_Chains(t *testing.T) {
	err := ValidationError("reps must be at least 1", nil).
		WithDetail("flag", "reps").
		WithDetail("value", "0")

	assert.Equal(t, "reps", err.Details["flag"])
	assert.Equal(t, "0", err.Details["value"])
}
