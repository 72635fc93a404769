package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	const root = "/home/user/project"

	tests := []struct {
		name    string
		req     *SearchRequest
		wantErr string
	}{
		{
			name: "valid request without scope",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
			},
		},
		{
			name: "valid request with scope",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
				Scope:        []string{"src/data_utils.py", "src/train.py"},
			},
		},
		{
			name:    "nil request",
			req:     nil,
			wantErr: "request cannot be nil",
		},
		{
			name: "missing language",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
			},
			wantErr: "language is required",
		},
		{
			name: "unsupported language",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "cobol",
			},
			wantErr: "unsupported language",
		},
		{
			name: "language without definition template",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "main",
				Language:     "java",
			},
			wantErr: "unsupported language for function_definition query",
		},
		{
			name: "missing function name",
			req: &SearchRequest{
				Kind:     FunctionDefinition,
				Language: "python",
			},
			wantErr: "function_name is required",
		},
		{
			name: "function name with metavariable marker",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "$NAME",
				Language:     "python",
			},
			wantErr: "invalid function name",
		},
		{
			name: "function name with whitespace",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add samples",
				Language:     "python",
			},
			wantErr: "invalid function name",
		},
		{
			name: "unknown query kind",
			req: &SearchRequest{
				Kind:     QueryKind("import_statement"),
				Language: "python",
			},
			wantErr: "unsupported query kind",
		},
		{
			name: "absolute scope path",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
				Scope:        []string{"/etc/passwd"},
			},
			wantErr: "absolute paths not allowed",
		},
		{
			name: "scope path escaping the root",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
				Scope:        []string{"../../../etc/passwd"},
			},
			wantErr: "path outside search root",
		},
		{
			name: "scope path with internal dotdot that stays inside",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
				Scope:        []string{"src/../src/data_utils.py"},
			},
		},
		{
			name: "empty scope entry",
			req: &SearchRequest{
				Kind:         FunctionDefinition,
				FunctionName: "add_samples",
				Language:     "python",
				Scope:        []string{""},
			},
			wantErr: "invalid scope path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateRequest(tt.req, root)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateRequest_RelativeRootRejected(t *testing.T) {
	t.Parallel()

	req := &SearchRequest{
		Kind:         FunctionDefinition,
		FunctionName: "add_samples",
		Language:     "python",
		Scope:        []string{"src/data_utils.py"},
	}

	err := ValidateRequest(req, "relative/root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search root must be absolute")
}
