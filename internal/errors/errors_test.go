package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeMissingRequired, "Full Name is required", nil),
			expected: "MISSING_REQUIRED_FIELDS: Full Name is required",
		},
		{
			name:     "with cause",
			err:      NewNetworkError(ErrCodeRemoteRequestFailed, "submit failed", io.ErrUnexpectedEOF),
			expected: "REMOTE_REQUEST_FAILED: submit failed (caused by: unexpected EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAsFindsWrappedAppError(t *testing.T) {
	base := NewAuthError(ErrCodeInvalidToken, "token expired", nil)
	wrapped := fmt.Errorf("dashboard: %w", base)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, appErr)
	assert.True(t, IsType(wrapped, ErrorTypeAuth))
	assert.True(t, HasCode(wrapped, ErrCodeInvalidToken))
	assert.False(t, HasCode(wrapped, ErrCodeNotFound))

	_, ok = As(io.EOF)
	assert.False(t, ok)
}

func TestServerMessage(t *testing.T) {
	withMessage := NewNetworkError(ErrCodeRemoteRequestFailed, "request failed", nil).
		WithContext(ContextServerMessage, "Email already registered")
	msg, ok := ServerMessage(fmt.Errorf("submit: %w", withMessage))
	assert.True(t, ok)
	assert.Equal(t, "Email already registered", msg)

	_, ok = ServerMessage(NewNetworkError(ErrCodeRemoteRequestFailed, "request failed", nil))
	assert.False(t, ok)

	_, ok = ServerMessage(io.EOF)
	assert.False(t, ok)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.EqualError(t, err, "invalid log level: verbose")
}

func TestLogErrorExpandsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	err := NewValidationError(ErrCodeInvalidField, "unknown field", nil).WithContext(ContextField, "nickname")
	logger.LogError(err, "dispatch rejected", "session", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatch rejected", entry["msg"])
	assert.Equal(t, "validation", entry["error_type"])
	assert.Equal(t, ErrCodeInvalidField, entry["error_code"])
	assert.Equal(t, "nickname", entry["field"])
	assert.Equal(t, "abc", entry["session"])
}
