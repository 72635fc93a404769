package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected indicates an execute was attempted without a Ready
	// connection. No subprocess is touched in this case.
	ErrNotConnected = errors.New("engine: not connected")

	// ErrBusy indicates an execute overlapped with one already in flight on
	// the same connection. The engine channel does not pipeline requests.
	ErrBusy = errors.New("engine: execution already in flight")

	// ErrCancelled indicates the connection was closed or the caller's
	// context expired while an execute was in flight.
	ErrCancelled = errors.New("engine: execution cancelled")

	// ErrNoTools indicates the engine came up but exposed no callable tools.
	ErrNoTools = errors.New("engine: no callable tools discovered")

	// ErrEngineReported indicates the engine handled the call but flagged the
	// result as an error, for example a scope path it could not read. The raw
	// engine payload travels in the wrapping ExecError.
	ErrEngineReported = errors.New("engine: engine reported an error")
)

// ConnectError reports a failed connection attempt: spawn, handshake, or
// capability discovery. The connection is left Disconnected.
type ConnectError struct {
	Stage string // "spawn", "initialize", "discover"
	Cause error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("engine: connect failed during %s: %v", e.Stage, e.Cause)
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// ExecError reports an engine-level execution failure or an output that could
// not be parsed. RawOutput carries the raw engine payload for diagnosis.
type ExecError struct {
	RawOutput string
	Cause     error
}

func (e *ExecError) Error() string {
	if e.RawOutput == "" {
		return fmt.Sprintf("engine: execution failed: %v", e.Cause)
	}
	return fmt.Sprintf("engine: execution failed: %v (raw output: %s)", e.Cause, truncate(e.RawOutput, 512))
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}

// isTransportDeath checks whether an error indicates the engine subprocess
// died or its stdio channel is gone, as opposed to an engine-level failure
// that leaves the process usable.
func isTransportDeath(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "closed pipe") ||
		strings.Contains(errStr, "file already closed") ||
		strings.Contains(errStr, "process already finished") ||
		strings.Contains(errStr, "signal:") ||
		strings.Contains(errStr, "connection reset")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
