package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// asBenchError finds a BenchError in the chain or wraps err as an internal error.
func asBenchError(err error) *BenchError {
	var be *BenchError
	if stderrors.As(err, &be) {
		return be
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display on stderr.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	be := asBenchError(err)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", be.Message))
	if be.Cause != nil && be.Cause.Error() != be.Message {
		sb.WriteString(fmt.Sprintf("  Cause: %v\n", be.Cause))
	}

	if be.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", be.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", be.Code))

	return sb.String()
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	var be *BenchError
	if !stderrors.As(err, &be) {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": be.Code,
		"message":    be.Message,
		"category":   string(be.Category),
		"severity":   string(be.Severity),
	}

	if be.Cause != nil {
		result["cause"] = be.Cause.Error()
	}

	for k, v := range be.Details {
		result["detail_"+k] = v
	}

	return result
}
