package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := errors.New("open config.yaml: permission denied")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{"parsing", NewParsingError("read news.csv", cause), ErrTypeParsing, "[PARSING] read news.csv: open config.yaml: permission denied"},
		{"validation", NewAppValidationError("weight must be positive"), ErrTypeValidation, "[VALIDATION] weight must be positive"},
		{"not found", NewNotFoundError("company"), ErrTypeNotFound, "[NOT_FOUND] company not found"},
		{"config", NewConfigError("load configuration", cause), ErrTypeConfig, "[CONFIG] load configuration: open config.yaml: permission denied"},
		{"export", NewExportError("write leads.xlsx", cause), ErrTypeExport, "[EXPORT] write leads.xlsx: open config.yaml: permission denied"},
		{"upstream", NewUpstreamError("sentiment provider", nil), ErrTypeUpstream, "[UPSTREAM] sentiment provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("export: %w", NewExportError("write leads.csv", cause))

	assert.ErrorIs(t, wrapped, cause)

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, ErrTypeExport, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad row"}

	got := err.WithContext("row", 7).WithContext("field", "date")

	assert.Same(t, err, got)
	assert.Equal(t, map[string]any{"row": 7, "field": "date"}, err.Context)
}
