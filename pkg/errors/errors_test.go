package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(CodeTransport, "Failed to send email", cause)

	require.True(t, IsCode(err, CodeTransport))
	require.False(t, IsCode(err, CodeLLM))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "Failed to send email: dial tcp: connection refused", err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, IsCode(wrapped, CodeTransport))
}

func TestPublicMessageHidesCause(t *testing.T) {
	err := Wrap(CodeLLM, "Failed to generate summary", errors.New("401 invalid api key sk-123"))
	require.Equal(t, "Failed to generate summary", PublicMessage(err))
	require.Empty(t, PublicMessage(errors.New("plain")))
}
