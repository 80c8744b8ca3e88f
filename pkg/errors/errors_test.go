package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without internal error",
			err:      NewUpstreamError(http.StatusBadRequest, "Student is already signed up"),
			expected: "upstream: Student is already signed up",
		},
		{
			name:     "with internal error",
			err:      NewExternalError("activities API unreachable", io.ErrUnexpectedEOF),
			expected: "external: activities API unreachable (unexpected EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAs_WrappedChain(t *testing.T) {
	base := NewParseError("invalid catalog body", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("refresh: %w", base)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, appErr)
	assert.True(t, IsType(wrapped, ErrorTypeParse))
	assert.False(t, IsType(wrapped, ErrorTypeExternal))
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(io.EOF)
	assert.False(t, ok)
	assert.False(t, IsType(nil, ErrorTypeInternal))
}

func TestUpstreamError_KeepsStatus(t *testing.T) {
	err := NewUpstreamError(http.StatusNotFound, "")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Empty(t, err.Message)
}
