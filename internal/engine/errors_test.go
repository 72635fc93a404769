package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectError(t *testing.T) {
	t.Parallel()

	cause := errors.New("exec: \"docker\": executable file not found in $PATH")
	err := &ConnectError{Stage: "spawn", Cause: cause}

	assert.Equal(t, "engine: connect failed during spawn: exec: \"docker\": executable file not found in $PATH", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestExecError(t *testing.T) {
	t.Parallel()

	t.Run("without raw output", func(t *testing.T) {
		t.Parallel()

		err := &ExecError{Cause: errors.New("boom")}
		assert.Equal(t, "engine: execution failed: boom", err.Error())
	})

	t.Run("includes raw output", func(t *testing.T) {
		t.Parallel()

		err := &ExecError{RawOutput: "unexpected token at line 3", Cause: errors.New("invalid JSON output")}
		assert.Contains(t, err.Error(), "invalid JSON output")
		assert.Contains(t, err.Error(), "unexpected token at line 3")
	})

	t.Run("truncates long raw output", func(t *testing.T) {
		t.Parallel()

		raw := strings.Repeat("x", 2048)
		err := &ExecError{RawOutput: raw, Cause: errors.New("invalid JSON output")}

		msg := err.Error()
		assert.Less(t, len(msg), 700, "the message must stay loggable no matter how large the payload")
		assert.Contains(t, msg, "...")
		assert.Equal(t, raw, err.RawOutput, "the full payload stays available on the error value")
	})

	t.Run("unwraps to sentinel", func(t *testing.T) {
		t.Parallel()

		err := &ExecError{Cause: fmt.Errorf("%w: context canceled", ErrCancelled)}
		assert.ErrorIs(t, err, ErrCancelled)
	})
}

func TestIsTransportDeath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"broken pipe", errors.New("write |1: broken pipe"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"closed pipe", errors.New("io: read/write on closed pipe"), true},
		{"file already closed", errors.New("read |0: file already closed"), true},
		{"process finished", errors.New("os: process already finished"), true},
		{"killed", errors.New("signal: killed"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"engine-level failure", errors.New("pattern parse error"), false},
		{"timeout", errors.New("request timed out"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isTransportDeath(tt.err))
		})
	}
}

func TestSentinelMessagesCarryPackagePrefix(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrNotConnected, ErrBusy, ErrCancelled, ErrNoTools, ErrEngineReported} {
		require.True(t, strings.HasPrefix(err.Error(), "engine: "), "%v", err)
	}
}
