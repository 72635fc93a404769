package search

import (
	"errors"
	"fmt"
)

// ErrUnsupportedQueryKind indicates a query kind the translator has no rule for.
var ErrUnsupportedQueryKind = errors.New("unsupported query kind")

// definitionTemplates maps a language to the ast-grep pattern template for a
// function definition. %s is replaced with the literal function name; $$$ARGS
// and $$$BODY are ast-grep multi metavariables matching any parameter sequence
// and any statement sequence. Because each template is parsed by the engine as
// a definition node, calls and assignments of the same name cannot match.
var definitionTemplates = map[string]string{
	"python":     "def %s($$$ARGS): $$$BODY",
	"go":         "func %s($$$ARGS) { $$$BODY }",
	"javascript": "function %s($$$ARGS) { $$$BODY }",
	"typescript": "function %s($$$ARGS) { $$$BODY }",
	"jsx":        "function %s($$$ARGS) { $$$BODY }",
	"tsx":        "function %s($$$ARGS) { $$$BODY }",
	"rust":       "fn %s($$$ARGS) { $$$BODY }",
	"php":        "function %s($$$ARGS) { $$$BODY }",
	"ruby":       "def %s($$$ARGS)\n  $$$BODY\nend",
}

// Translate converts a validated SearchRequest into the engine's pattern
// syntax. It is pure: it never touches the engine, never blocks, and fails
// only on a query kind it has no rule for. Callers are expected to have run
// ValidateRequest first.
func Translate(req SearchRequest) (string, error) {
	switch req.Kind {
	case FunctionDefinition:
		tmpl, ok := definitionTemplates[req.Language]
		if !ok {
			// ValidateRequest rejects these up front; kept as a guard for
			// direct callers.
			return "", fmt.Errorf("unsupported language for %s query: %s", req.Kind, req.Language)
		}
		return fmt.Sprintf(tmpl, req.FunctionName), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedQueryKind, req.Kind)
	}
}

// languageHasTemplate reports whether a translation rule exists for the given
// kind and language pair.
func languageHasTemplate(kind QueryKind, language string) bool {
	switch kind {
	case FunctionDefinition:
		_, ok := definitionTemplates[language]
		return ok
	default:
		return false
	}
}
