package search

// QueryKind discriminates the supported query templates. Each kind maps to one
// translation rule in translate.go; new kinds are new cases, not new types.
type QueryKind string

const (
	// FunctionDefinition finds function definitions by exact name.
	FunctionDefinition QueryKind = "function_definition"
)

// SearchRequest represents caller intent before translation.
type SearchRequest struct {
	Kind         QueryKind `json:"query_kind"`              // Required: query template discriminator
	FunctionName string    `json:"function_name,omitempty"` // Required for function_definition: literal name
	Language     string    `json:"language"`                // Required: engine language identifier
	Scope        []string  `json:"scope,omitempty"`         // Optional: files to restrict the search to
}

// MatchRecord is one located occurrence of a pattern in source text.
// Constructed only by the executor from engine output; immutable once built.
type MatchRecord struct {
	FilePath    string `json:"file_path"`    // Relative to the search root
	ByteStart   int    `json:"byte_start"`   // Start of half-open byte range
	ByteEnd     int    `json:"byte_end"`     // End of half-open byte range
	CodeSnippet string `json:"code_snippet"` // Exact text captured by the engine
	Pattern     string `json:"pattern"`      // Pattern that produced this hit
}

// SupportedLanguages defines the language identifiers the engine accepts for -l.
var SupportedLanguages = map[string]bool{
	"go":         true,
	"typescript": true,
	"javascript": true,
	"tsx":        true,
	"jsx":        true,
	"python":     true,
	"rust":       true,
	"c":          true,
	"cpp":        true,
	"java":       true,
	"php":        true,
	"ruby":       true,
}

// DefaultLanguage is assumed when a request leaves the language empty.
const DefaultLanguage = "python"
