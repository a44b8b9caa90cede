package modules

import (
	"context"
	"strings"
	"testing"
)

// fakeModule is a minimal Module implementation for registry and dispatch tests.
type fakeModule struct {
	name   string
	tools  []Tool
	result string
	err    error
}

func (f *fakeModule) Name() string        { return f.name }
func (f *fakeModule) Description() string { return "fake module for tests" }
func (f *fakeModule) Tools() []Tool       { return f.tools }

func (f *fakeModule) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

func newFakeModule(name string) *fakeModule {
	return &fakeModule{
		name: name,
		tools: []Tool{
			{
				Name: "echo",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"text": {Type: "string"},
					},
					Required: []string{"text"},
				},
			},
		},
		result: `{"ok":true}`,
	}
}

func TestRegistryLookup(t *testing.T) {
	m := newFakeModule("reg_lookup")
	RegisterModule(m)

	got, ok := GetModule("reg_lookup")
	if !ok {
		t.Fatal("module not found after registration")
	}
	if got.Name() != "reg_lookup" {
		t.Errorf("Name = %s", got.Name())
	}

	if _, ok := GetModule("nope"); ok {
		t.Error("unexpected module for unknown name")
	}
}

func TestOwnerOf(t *testing.T) {
	m := newFakeModule("owner_test")
	m.tools[0].Name = "owner_test_echo"
	RegisterModule(m)

	owner, ok := OwnerOf("owner_test_echo")
	if !ok {
		t.Fatal("tool not found")
	}
	if owner != "owner_test" {
		t.Errorf("owner = %s, want owner_test", owner)
	}

	if _, ok := OwnerOf("delete_everything"); ok {
		t.Error("unexpected owner for unknown tool")
	}
}

func TestRunSuccess(t *testing.T) {
	RegisterModule(newFakeModule("run_success"))

	result := Run(context.Background(), "run_success", "echo", map[string]any{"text": "hi"})
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content[0].Text)
	}
	if result.Content[0].Text != `{"ok":true}` {
		t.Errorf("content = %s", result.Content[0].Text)
	}
}

func TestRunUnknownModule(t *testing.T) {
	result := Run(context.Background(), "missing_module", "echo", nil)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(result.Content[0].Text, string(KindUnknownTool)) {
		t.Errorf("text = %s", result.Content[0].Text)
	}
}

func TestRunUnknownTool(t *testing.T) {
	RegisterModule(newFakeModule("run_unknown_tool"))

	result := Run(context.Background(), "run_unknown_tool", "delete_everything", nil)
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(result.Content[0].Text, string(KindUnknownTool)) {
		t.Errorf("text = %s", result.Content[0].Text)
	}
}

func TestRunValidationFailure(t *testing.T) {
	RegisterModule(newFakeModule("run_validation"))

	result := Run(context.Background(), "run_validation", "echo", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.HasPrefix(result.Content[0].Text, string(KindInvalidArgument)) {
		t.Errorf("text = %s", result.Content[0].Text)
	}
}

func TestRunToolErrorNormalized(t *testing.T) {
	m := newFakeModule("run_tool_error")
	m.err = Errorf(KindNotFound, "repository not found")
	RegisterModule(m)

	result := Run(context.Background(), "run_tool_error", "echo", map[string]any{"text": "hi"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	want := "NotFound: repository not found"
	if result.Content[0].Text != want {
		t.Errorf("text = %q, want %q", result.Content[0].Text, want)
	}
}

func TestFailureShape(t *testing.T) {
	result := Failure(KindRateLimited, "too many requests")
	if !result.IsError {
		t.Error("IsError should be set")
	}
	if result.Content[0].Type != "text" {
		t.Errorf("content type = %s", result.Content[0].Type)
	}
	if result.Content[0].Text != "RateLimited: too many requests" {
		t.Errorf("text = %s", result.Content[0].Text)
	}
}
