package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	// Given: an unknown argument error
	err := UnknownArgument("-foo")

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: message, hint and code are present
	assert.Contains(t, result, "Error: Unknown argument: -foo")
	assert.Contains(t, result, "Hint: valid benchmark flags")
	assert.Contains(t, result, "Code: ERR_104_UNKNOWN_ARGUMENT")
}

func TestFormatForCLI_PlainErrorWrappedAsInternal(t *testing.T) {
	result := FormatForCLI(errors.New("boom"))

	assert.Contains(t, result, "Error: boom")
	assert.Contains(t, result, "Code: ERR_501_INTERNAL")
}

func TestFormatForCLI_ShowsCause(t *testing.T) {
	err := EngineError("failed to open index", errors.New("permission denied"))

	result := FormatForCLI(err)

	assert.Contains(t, result, "Cause: permission denied")
}

func TestFormatForCLI_Nil(t *testing.T) {
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForLog_Details(t *testing.T) {
	err := DocumentRead("corpus/a/article7", "Failed to read title", nil)

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeDocumentRead, fields["error_code"])
	assert.Equal(t, "corpus/a/article7", fields["detail_document"])
}

func TestFormatForLog_PlainError(t *testing.T) {
	fields := FormatForLog(errors.New("plain"))
	assert.Equal(t, map[string]any{"error": "plain"}, fields)
}
