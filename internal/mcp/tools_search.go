package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-scout/internal/engine"
	mcputils "github.com/mvp-joe/project-scout/internal/mcp-utils"
	"github.com/mvp-joe/project-scout/internal/search"
	"github.com/mvp-joe/project-scout/internal/tool"
)

// AddFunctionDefinitionTool registers the function_definition tool with an MCP
// server. This function is composable - it can be combined with other tool
// registrations on the same server.
//
// The tool finds where a function is defined using AST-aware pattern search.
// Because the generated pattern is parsed as a definition node, calls and
// assignments of the same name never match.
func AddFunctionDefinitionTool(s *server.MCPServer, finder tool.Finder) {
	t := mcp.NewTool(
		"function_definition",
		mcp.WithDescription("Find where a function is defined by exact name using AST-aware pattern search. Matches definition sites only: calls, imports, and assignments of the same name are never returned."),
		mcp.WithString("function_name",
			mcp.Required(),
			mcp.Description("Exact name of the function to find (literal identifier, no wildcards)"),
		),
		mcp.WithString("language",
			mcp.DefaultString(search.DefaultLanguage),
			mcp.Description("Language to search: python, go, javascript, typescript, jsx, tsx, rust, php, ruby"),
		),
		mcp.WithArray("target_files",
			mcp.Description("Optional files or directories to search, relative to the search root (e.g. [\"src/utils.py\"]). Defaults to the whole root."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	handler := createFunctionDefinitionHandler(finder)
	s.AddTool(t, handler)
}

// createFunctionDefinitionHandler creates the handler for the
// function_definition tool.
func createFunctionDefinitionHandler(finder tool.Finder) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req tool.FunctionDefinitionRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		if req.FunctionName == "" {
			return mcp.NewToolResultError("function_name parameter is required"), nil
		}

		response, err := finder.FindFunctionDefinition(ctx, &req)
		if err != nil {
			// User errors become tool errors the model can read and correct;
			// system errors propagate as Go errors.
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(response)
	}
}

// isUserError determines if an error should be shown to the calling model as a
// tool error (something it can fix by changing its arguments or retrying)
// versus treated as an internal system error.
//
// User errors:
// - Validation failures (missing function name, unsupported language)
// - Scope paths escaping the search root
// - Engine-reported failures (typically a scope path the engine cannot read)
// - An execution already in flight (retryable)
//
// System errors:
// - Engine connect failures (spawn, handshake, discovery)
// - Unparseable engine output, dead subprocess, cancellation
func isUserError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, engine.ErrEngineReported) || errors.Is(err, engine.ErrBusy) {
		return true
	}

	// Remaining engine failures are never the caller's fault, even when
	// their text happens to contain words like "invalid".
	var connErr *engine.ConnectError
	var execErr *engine.ExecError
	if errors.As(err, &connErr) || errors.As(err, &execErr) ||
		errors.Is(err, engine.ErrNotConnected) {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "required") ||
		strings.Contains(msg, "unsupported") ||
		strings.Contains(msg, "outside search root")
}
