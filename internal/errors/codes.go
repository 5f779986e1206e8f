// Package errors provides structured error handling for indexbench.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration and argument errors
//   - 2XX: IO errors (corpus, documents, index directory)
//   - 4XX: Validation errors
//   - 5XX: Internal and engine errors
//
// Every error in this taxonomy aborts the benchmark. Nothing is retried.
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration or command line errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates engine or unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the run must abort. Startup and mid-run failures are fatal.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound  = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   = "ERR_102_CONFIG_INVALID"
	ErrCodeUnknownArgument = "ERR_104_UNKNOWN_ARGUMENT"

	// IO errors (200-299)
	ErrCodeCorpusNotFound = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeCorruptIndex   = "ERR_205_CORRUPT_INDEX"
	ErrCodeDocumentRead   = "ERR_206_DOCUMENT_READ"
	ErrCodeIndexLocked    = "ERR_207_INDEX_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeEmptyCorpus  = "ERR_402_EMPTY_CORPUS"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeEngineFailed = "ERR_505_ENGINE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "201" from "ERR_201_CORPUS_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid:
		// Config problems are reported before a run starts
		return SeverityError
	default:
		return SeverityFatal
	}
}
