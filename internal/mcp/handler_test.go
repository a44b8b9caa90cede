package mcp

import (
	"context"
	"strings"
	"testing"

	"repomate/server/internal/jsonrpc"
	"repomate/server/internal/modules"
	"repomate/server/internal/modules/github"
)

func init() {
	modules.RegisterModule(github.New("EvieHwang"))
}

func TestHandleInitialize(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "initialize",
	})
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	init, ok := result.(*InitializeResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if init.ServerInfo.Name != "repomate" {
		t.Errorf("server name = %s", init.ServerInfo.Name)
	}
	if init.Capabilities.Tools == nil {
		t.Error("tools capability missing")
	}
}

func TestMethodNotFound(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	_, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "resources/list",
	})
	if rpcErr == nil {
		t.Fatal("expected error")
	}
	if rpcErr.Code != MethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, MethodNotFound)
	}
}

func TestToolsList(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "tools/list",
	})
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}

	list, ok := result.(*ToolsListResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if len(list.Tools) != 15 {
		t.Errorf("tool count = %d, want 15", len(list.Tools))
	}

	byName := make(map[string]bool, len(list.Tools))
	for _, tool := range list.Tools {
		byName[tool.Name] = true
		if tool.InputSchema.Type != "object" {
			t.Errorf("tool %s: schema type = %s", tool.Name, tool.InputSchema.Type)
		}
	}
	for _, name := range []string{"list_repos", "write_file", "merge_pr", "search_code"} {
		if !byName[name] {
			t.Errorf("tool %s missing from list", name)
		}
	}
}

func TestToolCallUnknownToolIsResultNotProtocolError(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]any{"name": "delete_everything", "arguments": map[string]any{}},
	})
	if rpcErr != nil {
		t.Fatalf("unknown tool should not be a protocol error: %v", rpcErr)
	}

	callResult, ok := result.(*ToolCallResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if !callResult.IsError {
		t.Fatal("expected IsError result")
	}
	if !strings.Contains(callResult.Content[0].Text, "UnknownTool") {
		t.Errorf("text = %s", callResult.Content[0].Text)
	}
}

func TestToolCallMissingName(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	_, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]any{"arguments": map[string]any{}},
	})
	if rpcErr == nil {
		t.Fatal("expected protocol error")
	}
	if rpcErr.Code != InvalidParams {
		t.Errorf("code = %d, want %d", rpcErr.Code, InvalidParams)
	}
}

func TestToolCallValidationFailure(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "tools/call",
		Params: map[string]any{"name": "get_repo", "arguments": map[string]any{}},
	})
	if rpcErr != nil {
		t.Fatalf("validation failure should not be a protocol error: %v", rpcErr)
	}

	callResult := result.(*ToolCallResult)
	if !callResult.IsError {
		t.Fatal("expected IsError result")
	}
	if !strings.Contains(callResult.Content[0].Text, "InvalidArgument") {
		t.Errorf("text = %s", callResult.Content[0].Text)
	}
}

func TestInitializedNotificationIsAccepted(t *testing.T) {
	h := NewHandler("repomate", "0.1.0")

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", Method: "notifications/initialized",
	})
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
}
