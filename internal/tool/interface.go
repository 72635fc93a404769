package tool

import (
	"context"

	"github.com/mvp-joe/project-scout/internal/search"
)

// Finder defines the interface for structured code search backed by the
// pattern-search engine.
//
// This interface enables:
// - Dependency injection for testing (mock implementations)
// - MCP tool integration without concrete type dependencies
type Finder interface {
	// FindFunctionDefinition locates definitions of a function by exact name.
	//
	// Error types:
	// - User errors (missing name, unsupported language, bad scope path):
	//   returned before the engine is touched, safe to show to the caller
	// - Engine errors (connect failures, execution failures): internal
	FindFunctionDefinition(ctx context.Context, req *FunctionDefinitionRequest) (*FunctionDefinitionResponse, error)
}

// EngineConnection is the subset of the engine connection the service
// drives. *engine.Connection satisfies it.
// Declared as an interface to allow mocking in tests.
type EngineConnection interface {
	Connect(ctx context.Context) error
	Execute(ctx context.Context, pattern, language string, scope []string) ([]search.MatchRecord, error)
	Close() error
}
