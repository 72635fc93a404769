package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scout/internal/engine"
	"github.com/mvp-joe/project-scout/internal/search"
	"github.com/mvp-joe/project-scout/internal/tool"
)

// mockFinder implements tool.Finder for testing
type mockFinder struct {
	findFunc func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error)
}

func (m *mockFinder) FindFunctionDefinition(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, req)
	}
	// Default: return success with 1 match
	return &tool.FunctionDefinitionResponse{
		Matches: []search.MatchRecord{
			{
				FilePath:    "src/data_utils.py",
				ByteStart:   120,
				ByteEnd:     184,
				CodeSnippet: "def add_samples(dataset, samples):\n    dataset.extend(samples)",
				Pattern:     "def add_samples($$$ARGS): $$$BODY",
			},
		},
	}, nil
}

// TestAddFunctionDefinitionTool verifies the tool is registered correctly
func TestAddFunctionDefinitionTool(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	finder := &mockFinder{}

	// Register tool
	AddFunctionDefinitionTool(mcpServer, finder)

	// Verify tool exists by checking server tools
	// Note: mcp-go doesn't expose tools list, so we validate via handler execution
	assert.NotNil(t, mcpServer, "server should exist")
}

// TestFunctionDefinitionHandler_ValidRequest tests a successful search
func TestFunctionDefinitionHandler_ValidRequest(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "add_samples",
				"language":      "python",
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result, "should return result")
	assert.False(t, result.IsError, "should not be error result")

	// Parse response JSON
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")

	var response tool.FunctionDefinitionResponse
	err = json.Unmarshal([]byte(textContent.Text), &response)
	require.NoError(t, err, "should parse response JSON")

	require.Len(t, response.Matches, 1, "should return 1 match")
	assert.Equal(t, "src/data_utils.py", response.Matches[0].FilePath)
	assert.Equal(t, 120, response.Matches[0].ByteStart)
	assert.Equal(t, 184, response.Matches[0].ByteEnd)
	assert.Contains(t, response.Matches[0].CodeSnippet, "def add_samples")
}

// TestFunctionDefinitionHandler_MissingFunctionName tests validation of the
// required function_name field
func TestFunctionDefinitionHandler_MissingFunctionName(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			t.Error("finder should not be called for missing function_name")
			return nil, nil
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"language": "python",
				// Missing function_name
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result, "should return result")
	assert.True(t, result.IsError, "should be error result")

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	assert.Contains(t, textContent.Text, "function_name parameter is required")
}

// TestFunctionDefinitionHandler_InvalidArgumentsFormat tests handling of
// malformed arguments
func TestFunctionDefinitionHandler_InvalidArgumentsFormat(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: "invalid string instead of map",
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result, "should return result")
	assert.True(t, result.IsError, "should be error result")

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	assert.Contains(t, textContent.Text, "invalid arguments format")
}

// TestFunctionDefinitionHandler_UserError tests that user errors are returned
// as tool errors the model can read
func TestFunctionDefinitionHandler_UserError(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			return nil, errors.New("unsupported language: kotlin (supported: go, typescript, javascript, tsx, jsx, python, rust, c, cpp, java, php, ruby)")
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "main",
				"language":      "kotlin",
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result, "should return result")
	assert.True(t, result.IsError, "should be error result")

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	assert.Contains(t, textContent.Text, "unsupported language")
}

// TestFunctionDefinitionHandler_SystemError tests that system errors are
// returned as Go errors
func TestFunctionDefinitionHandler_SystemError(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			return nil, &engine.ConnectError{Stage: "spawn", Cause: errors.New("docker: command not found")}
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "main",
				"language":      "go",
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.Error(t, err, "should return system error")
	assert.Nil(t, result, "should not return result for system error")
	assert.Contains(t, err.Error(), "command not found")
}

// TestFunctionDefinitionHandler_DefaultsAndTargetFiles tests that optional
// parameters reach the finder
func TestFunctionDefinitionHandler_DefaultsAndTargetFiles(t *testing.T) {
	t.Parallel()

	var capturedReq *tool.FunctionDefinitionRequest
	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			capturedReq = req
			return &tool.FunctionDefinitionResponse{Matches: []search.MatchRecord{}}, nil
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "RegisterRoutes",
				"language":      "go",
				"target_files":  []interface{}{"internal/server/simple.go", "internal/server/routes.go"},
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return error")
	require.NotNil(t, result, "should return result")
	assert.False(t, result.IsError, "should not be error result")

	// Verify parameters were passed correctly
	require.NotNil(t, capturedReq, "should capture request")
	assert.Equal(t, "RegisterRoutes", capturedReq.FunctionName)
	assert.Equal(t, "go", capturedReq.Language)
	assert.Equal(t, []string{"internal/server/simple.go", "internal/server/routes.go"}, capturedReq.TargetFiles)
}

// TestFunctionDefinitionHandler_StringEncodedTargetFiles tests coercion of a
// JSON-encoded array argument, which some MCP clients send
func TestFunctionDefinitionHandler_StringEncodedTargetFiles(t *testing.T) {
	t.Parallel()

	var capturedReq *tool.FunctionDefinitionRequest
	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			capturedReq = req
			return &tool.FunctionDefinitionResponse{Matches: []search.MatchRecord{}}, nil
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "load_samples",
				"target_files":  `["src/data_utils.py"]`,
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return error")
	require.NotNil(t, result, "should return result")
	assert.False(t, result.IsError, "should not be error result")

	require.NotNil(t, capturedReq, "should capture request")
	assert.Equal(t, []string{"src/data_utils.py"}, capturedReq.TargetFiles)
}

// TestFunctionDefinitionHandler_EmptyMatches tests that zero hits serialize as
// an empty array rather than null
func TestFunctionDefinitionHandler_EmptyMatches(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			return &tool.FunctionDefinitionResponse{Matches: []search.MatchRecord{}}, nil
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "nonexistent",
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return error")
	require.NotNil(t, result, "should return result")
	assert.False(t, result.IsError, "should not be error result")

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	assert.JSONEq(t, `{"matches": []}`, textContent.Text)
}

// TestFunctionDefinitionHandler_JSONMarshaling tests the wire shape of a full
// response
func TestFunctionDefinitionHandler_JSONMarshaling(t *testing.T) {
	t.Parallel()

	finder := &mockFinder{
		findFunc: func(ctx context.Context, req *tool.FunctionDefinitionRequest) (*tool.FunctionDefinitionResponse, error) {
			return &tool.FunctionDefinitionResponse{
				Matches: []search.MatchRecord{
					{
						FilePath:    "internal/server/simple.go",
						ByteStart:   842,
						ByteEnd:     931,
						CodeSnippet: "func RegisterRoutes(mux *http.ServeMux, h *Handler) {\n\tmux.Handle(\"/\", h)\n}",
						Pattern:     "func RegisterRoutes($$$ARGS) { $$$BODY }",
					},
				},
			}, nil
		},
	}
	handler := createFunctionDefinitionHandler(finder)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"function_name": "RegisterRoutes",
				"language":      "go",
			},
		},
	}

	result, err := handler(context.Background(), request)

	require.NoError(t, err, "should not return error")
	require.NotNil(t, result, "should return result")
	assert.False(t, result.IsError, "should not be error result")

	// Verify JSON is valid and carries the documented wire keys
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")

	var raw map[string]interface{}
	err = json.Unmarshal([]byte(textContent.Text), &raw)
	require.NoError(t, err, "should parse JSON")

	matches, ok := raw["matches"].([]interface{})
	require.True(t, ok, "matches should be an array")
	require.Len(t, matches, 1)

	match, ok := matches[0].(map[string]interface{})
	require.True(t, ok, "match should be an object")
	assert.Equal(t, "internal/server/simple.go", match["file_path"])
	assert.Equal(t, float64(842), match["byte_start"])
	assert.Equal(t, float64(931), match["byte_end"])
	assert.NotEmpty(t, match["code_snippet"])
	assert.NotEmpty(t, match["pattern"])
}

// TestIsUserError tests the user error detection logic
func TestIsUserError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "missing function name",
			err:      errors.New("function_name is required"),
			expected: true,
		},
		{
			name:     "invalid function name",
			err:      errors.New(`invalid function name: "a b" (must be a literal identifier)`),
			expected: true,
		},
		{
			name:     "unsupported language",
			err:      errors.New("unsupported language: kotlin"),
			expected: true,
		},
		{
			name:     "path traversal",
			err:      errors.New("path outside search root: ../../etc/passwd"),
			expected: true,
		},
		{
			name:     "excluded scope",
			err:      errors.New(`invalid scope: "node_modules/lib/index.js" matches exclude pattern "node_modules/**"`),
			expected: true,
		},
		{
			name:     "connect failure",
			err:      &engine.ConnectError{Stage: "spawn", Cause: errors.New("docker: command not found")},
			expected: false,
		},
		{
			name:     "exec failure with invalid output",
			err:      &engine.ExecError{RawOutput: "not json", Cause: errors.New("invalid JSON output")},
			expected: false,
		},
		{
			name:     "not connected",
			err:      engine.ErrNotConnected,
			expected: false,
		},
		{
			name:     "busy is retryable",
			err:      fmt.Errorf("execute: %w", engine.ErrBusy),
			expected: true,
		},
		{
			name:     "engine-reported failure",
			err:      &engine.ExecError{RawOutput: "No such file or directory", Cause: engine.ErrEngineReported},
			expected: true,
		},
		{
			name:     "cancelled execution",
			err:      &engine.ExecError{Cause: engine.ErrCancelled},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isUserError(tt.err)
			assert.Equal(t, tt.expected, result, "error: %v", tt.err)
		})
	}
}
