package tool

import (
	"github.com/mvp-joe/project-scout/internal/search"
)

// FunctionDefinitionRequest carries the arguments of the function_definition
// tool call.
type FunctionDefinitionRequest struct {
	FunctionName string   `json:"function_name"`          // Required: exact name to find
	Language     string   `json:"language,omitempty"`     // Optional: defaults to the configured language
	TargetFiles  []string `json:"target_files,omitempty"` // Optional: paths relative to the search root
}

// FunctionDefinitionResponse is the tool's result payload. Matches is empty,
// never null, when the engine reports zero hits.
type FunctionDefinitionResponse struct {
	Matches []search.MatchRecord `json:"matches"`
}
