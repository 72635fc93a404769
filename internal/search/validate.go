package search

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateRequest checks that a SearchRequest is well-formed before translation.
// Scope paths are validated against searchRoot to prevent directory traversal;
// searchRoot must be an absolute path.
func ValidateRequest(req *SearchRequest, searchRoot string) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}

	if req.Language == "" {
		return errors.New("language is required")
	}
	if !SupportedLanguages[req.Language] {
		return fmt.Errorf("unsupported language: %s (supported: go, typescript, javascript, tsx, jsx, python, rust, c, cpp, java, php, ruby)", req.Language)
	}

	switch req.Kind {
	case FunctionDefinition:
		if err := validateFunctionName(req.FunctionName); err != nil {
			return err
		}
		if !languageHasTemplate(req.Kind, req.Language) {
			return fmt.Errorf("unsupported language for %s query: %s", req.Kind, req.Language)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedQueryKind, req.Kind)
	}

	if len(req.Scope) > 0 {
		cleanRoot := filepath.Clean(searchRoot)
		if !filepath.IsAbs(cleanRoot) {
			return fmt.Errorf("search root must be absolute path: %s", searchRoot)
		}
		for _, path := range req.Scope {
			if err := validateScopePath(path, cleanRoot); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateFunctionName rejects names that would not be a single literal token in
// the generated pattern. Metavariable markers or whitespace in the name would
// change the meaning of the template rather than match literally.
func validateFunctionName(name string) error {
	if name == "" {
		return errors.New("function_name is required")
	}
	if strings.ContainsAny(name, "$ \t\n") {
		return fmt.Errorf("invalid function name: %q (must be a literal identifier)", name)
	}
	return nil
}

// validateScopePath validates that a scope entry is safe and within the search
// root. This prevents directory traversal like "../../../etc/passwd".
func validateScopePath(path string, searchRoot string) error {
	if path == "" {
		return errors.New("invalid scope path: empty")
	}

	// Reject absolute paths outright
	if filepath.IsAbs(path) {
		return fmt.Errorf("path outside search root: %s (absolute paths not allowed)", path)
	}

	// Clean the path to resolve any ".." or "." components
	cleanPath := filepath.Clean(path)

	// Join with search root and verify the result stays inside it
	absPath := filepath.Clean(filepath.Join(searchRoot, cleanPath))
	if absPath != searchRoot && !strings.HasPrefix(absPath, searchRoot+string(filepath.Separator)) {
		return fmt.Errorf("path outside search root: %s", path)
	}

	if strings.Contains(path, "..") {
		rel, err := filepath.Rel(searchRoot, absPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("path outside search root: %s", path)
		}
	}

	return nil
}
