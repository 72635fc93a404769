package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mvp-joe/project-scout/internal/search"
)

// buildRunArgs constructs the engine invocation argv: run mode, language,
// pattern, structured output, then either the explicit scope paths or the
// search-root sentinel.
func buildRunArgs(pattern, language string, scope []string) []string {
	args := []string{"run", "-l", language, "--pattern", pattern, "--json"}
	if len(scope) > 0 {
		args = append(args, scope...)
	} else {
		args = append(args, ".")
	}
	return args
}

// Execute runs one translated pattern against the engine and normalizes the
// output into MatchRecords. The call blocks until the engine's single
// response arrives; the engine channel does not pipeline, so an overlapping
// call on the same connection is rejected with ErrBusy. No timeout is imposed
// here: callers bound the call through ctx, and cancellation surfaces as
// ErrCancelled.
//
// Failure policy: a connection that is not Ready fails with ErrNotConnected
// before any subprocess work. Engine-reported errors and unparseable output
// fail with ExecError carrying the raw payload; there is no retry and no
// degraded fallback. An empty result set is returned only when the engine
// itself reports zero hits. Execution failures leave the connection Ready
// unless the subprocess died.
func (c *Connection) Execute(ctx context.Context, pattern, language string, scope []string) ([]search.MatchRecord, error) {
	if !c.inflight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.inflight.Store(false)

	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	cli := c.client
	toolName := c.toolName
	gen := c.gen
	c.mu.Unlock()

	args := buildRunArgs(pattern, language, scope)
	c.log.Debug("executing pattern", "tool", toolName, "args", args)

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = map[string]interface{}{"args": args}

	res, err := cli.CallTool(ctx, req)
	if err != nil {
		return nil, c.classifyCallError(ctx, gen, err)
	}

	raw := textContent(res)
	if res.IsError {
		c.log.Error("engine reported error", "args", args, "output", raw)
		return nil, &ExecError{RawOutput: raw, Cause: ErrEngineReported}
	}

	records, err := parseEngineOutput(raw, pattern)
	if err != nil {
		c.log.Error("engine output parse failed", "args", args, "error", err)
		return nil, &ExecError{RawOutput: raw, Cause: err}
	}

	c.log.Debug("execution complete", "matches", len(records))
	return records, nil
}

// classifyCallError distinguishes a deliberate cancellation (connection
// closed, caller ctx done) from a dead subprocess and from an ordinary
// engine-level failure. Only a dead subprocess mutates connection state.
func (c *Connection) classifyCallError(ctx context.Context, gen uint64, err error) error {
	c.mu.Lock()
	closed := c.gen != gen || c.state != StateReady
	c.mu.Unlock()

	if closed || ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ExecError{Cause: fmt.Errorf("%w: %v", ErrCancelled, err)}
	}

	if isTransportDeath(err) {
		c.markDisconnected()
		c.log.Error("engine process died", "error", err)
		return &ExecError{Cause: fmt.Errorf("engine process died: %w", err)}
	}

	return &ExecError{Cause: err}
}

// textContent concatenates the text payload of a tool result.
func textContent(res *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

// engineHit is the raw shape of one hit in the engine's JSON output. Pointer
// fields let the parser tell a missing range apart from a legitimate zero
// offset.
type engineHit struct {
	File  string       `json:"file"`
	Range *engineRange `json:"range"`
	Text  string       `json:"text"`
}

type engineRange struct {
	ByteOffset *engineByteOffset `json:"byteOffset"`
}

type engineByteOffset struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

// parseEngineOutput parses the engine's JSON hit array into MatchRecords,
// attaching the originating pattern to each. Empty output means zero hits
// (not an error); anything that deviates from the documented shape is a
// parse failure.
func parseEngineOutput(raw string, pattern string) ([]search.MatchRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []search.MatchRecord{}, nil
	}

	var hits []engineHit
	if err := json.Unmarshal([]byte(trimmed), &hits); err != nil {
		return nil, fmt.Errorf("invalid JSON output: %w", err)
	}

	records := make([]search.MatchRecord, len(hits))
	for i, hit := range hits {
		if hit.File == "" {
			return nil, fmt.Errorf("hit %d missing file", i)
		}
		if hit.Range == nil || hit.Range.ByteOffset == nil ||
			hit.Range.ByteOffset.Start == nil || hit.Range.ByteOffset.End == nil {
			return nil, fmt.Errorf("hit %d missing byte range", i)
		}
		start := *hit.Range.ByteOffset.Start
		end := *hit.Range.ByteOffset.End
		if start < 0 || end < start {
			return nil, fmt.Errorf("hit %d has invalid byte range [%d, %d)", i, start, end)
		}
		records[i] = search.MatchRecord{
			FilePath:    hit.File,
			ByteStart:   start,
			ByteEnd:     end,
			CodeSnippet: hit.Text,
			Pattern:     pattern,
		}
	}

	return records, nil
}
