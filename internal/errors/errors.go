package errors

import (
	stderrors "errors"
	"fmt"
)

// BenchError is the structured error type for indexbench.
// It provides rich context for error handling, logging, and user presentation.
type BenchError struct {
	// Code is the unique error code (e.g., "ERR_201_CORPUS_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Sentinel errors for errors.Is matching. Matching is by code only.
var (
	ErrUnknownArgument = &BenchError{Code: ErrCodeUnknownArgument}
	ErrCorpusNotFound  = &BenchError{Code: ErrCodeCorpusNotFound}
	ErrDocumentRead    = &BenchError{Code: ErrCodeDocumentRead}
	ErrCorruptIndex    = &BenchError{Code: ErrCodeCorruptIndex}
	ErrIndexLocked     = &BenchError{Code: ErrCodeIndexLocked}
	ErrInvalidInput    = &BenchError{Code: ErrCodeInvalidInput}
	ErrEmptyCorpus     = &BenchError{Code: ErrCodeEmptyCorpus}
	ErrEngineFailed    = &BenchError{Code: ErrCodeEngineFailed}
	ErrConfigInvalid   = &BenchError{Code: ErrCodeConfigInvalid}
	ErrConfigNotFound  = &BenchError{Code: ErrCodeConfigNotFound}
)

// Error implements the error interface.
func (e *BenchError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with BenchError.
func (e *BenchError) Is(target error) bool {
	if t, ok := target.(*BenchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *BenchError) WithDetail(key, value string) *BenchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *BenchError) WithSuggestion(suggestion string) *BenchError {
	e.Suggestion = suggestion
	return e
}

// New creates a new BenchError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *BenchError {
	return &BenchError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a BenchError from an existing error.
// The error's message becomes the BenchError message.
func Wrap(code string, err error) *BenchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UnknownArgument reports a command line argument that is not recognised.
func UnknownArgument(arg string) *BenchError {
	return New(ErrCodeUnknownArgument, fmt.Sprintf("Unknown argument: %s", arg), nil).
		WithDetail("argument", arg).
		WithSuggestion("valid benchmark flags are -docs, -reps, -increment and -store")
}

// CorpusNotFound reports a missing corpus root directory.
func CorpusNotFound(root string, cause error) *BenchError {
	return New(ErrCodeCorpusNotFound, fmt.Sprintf("Can't find '%s' directory", root), cause).
		WithDetail("corpus", root).
		WithSuggestion("run from the directory that contains the extracted corpus, or pass --corpus")
}

// DocumentRead reports a document that could not be read.
func DocumentRead(path string, message string, cause error) *BenchError {
	return New(ErrCodeDocumentRead, fmt.Sprintf("%s: %s", message, path), cause).
		WithDetail("document", path)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *BenchError {
	return New(ErrCodeInvalidInput, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *BenchError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// EngineError creates an engine failure that keeps the engine's error as cause.
func EngineError(message string, cause error) *BenchError {
	return New(ErrCodeEngineFailed, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the benchmark invocation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var be *BenchError
	if stderrors.As(err, &be) {
		return be.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a BenchError.
// Returns empty string if no BenchError is in the chain.
func GetCode(err error) string {
	var be *BenchError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return ""
}

// GetCategory extracts the category from a BenchError.
// Returns empty string if no BenchError is in the chain.
func GetCategory(err error) Category {
	var be *BenchError
	if stderrors.As(err, &be) {
		return be.Category
	}
	return ""
}
