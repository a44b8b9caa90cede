package modules

import (
	"strings"
	"testing"
)

func TestValidateParams_RequiredFields(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"repo": {Type: "string", Description: "Repository name"},
			"path": {Type: "string", Description: "File path"},
		},
		Required: []string{"repo", "path"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name:    "all required present",
			params:  map[string]any{"repo": "hello-world", "path": "README.md"},
			wantErr: false,
		},
		{
			name:    "missing one required",
			params:  map[string]any{"repo": "hello-world"},
			wantErr: true,
			errMsg:  "missing required parameter(s): path",
		},
		{
			name:    "missing all required",
			params:  map[string]any{},
			wantErr: true,
			errMsg:  "missing required parameter(s): repo, path",
		},
		{
			name:    "nil params",
			params:  nil,
			wantErr: true,
			errMsg:  "missing required parameter(s): repo, path",
		},
		{
			name:    "empty string for required field",
			params:  map[string]any{"repo": "", "path": "README.md"},
			wantErr: true,
			errMsg:  "missing required parameter(s): repo",
		},
		{
			name:    "nil value for required field",
			params:  map[string]any{"repo": nil, "path": "README.md"},
			wantErr: true,
			errMsg:  "missing required parameter(s): repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateParams(schema, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
				}
				if KindOf(err) != KindInvalidArgument {
					t.Errorf("kind = %s, want %s", KindOf(err), KindInvalidArgument)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateParams_TypeChecks(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"repo":    {Type: "string"},
			"number":  {Type: "number"},
			"private": {Type: "boolean"},
		},
		Required: []string{"repo"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{
			name:    "correct types",
			params:  map[string]any{"repo": "x", "number": float64(7), "private": true},
			wantErr: false,
		},
		{
			name:    "number as string",
			params:  map[string]any{"repo": "x", "number": "7"},
			wantErr: true,
		},
		{
			name:    "boolean as string",
			params:  map[string]any{"repo": "x", "private": "true"},
			wantErr: true,
		},
		{
			name:    "string as number",
			params:  map[string]any{"repo": float64(1)},
			wantErr: true,
		},
		{
			name:    "optional params omitted",
			params:  map[string]any{"repo": "x"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateParams(schema, tt.params)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateParams_ExtraParamsIgnored(t *testing.T) {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"repo": {Type: "string"},
		},
		Required: []string{"repo"},
	}

	validated, err := ValidateParams(schema, map[string]any{
		"repo":   "hello-world",
		"format": "json",
		"bogus":  42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validated["bogus"] != 42 {
		t.Error("extra params should pass through untouched")
	}
}
