package mcp

import (
	"context"
	"encoding/json"

	"repomate/server/internal/jsonrpc"
	"repomate/server/internal/modules"
)

type Handler struct {
	serverName    string
	serverVersion string
}

func NewHandler(serverName, serverVersion string) *Handler {
	return &Handler{
		serverName:    serverName,
		serverVersion: serverVersion,
	}
}

// ProcessRequest routes a JSON-RPC request to the appropriate handler.
// Called by the transport middleware.
func (h *Handler) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req), nil
	case "initialized", "notifications/initialized":
		return nil, nil
	case "tools/list":
		return h.handleToolsList(ctx)
	case "tools/call":
		return h.handleToolCall(ctx, req)
	default:
		return nil, &jsonrpc.Error{Code: MethodNotFound, Message: "Method not found"}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc.Request) *InitializeResult {
	return &InitializeResult{
		ProtocolVersion: "2025-03-26",
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    h.serverName,
			Version: h.serverVersion,
		},
	}
}

func (h *Handler) handleToolsList(ctx context.Context) (*ToolsListResult, *jsonrpc.Error) {
	return &ToolsListResult{Tools: modules.AllTools()}, nil
}

// handleToolCall dispatches a tool invocation. Tool-level failures come back
// as ToolCallResults with IsError set, not as protocol errors; only malformed
// requests produce a JSON-RPC error.
func (h *Handler) handleToolCall(ctx context.Context, req *jsonrpc.Request) (*ToolCallResult, *jsonrpc.Error) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params"}
	}

	var params ToolCallParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params structure"}
	}
	if params.Name == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "name is required"}
	}
	if params.Arguments == nil {
		params.Arguments = make(map[string]interface{})
	}

	moduleName, ok := modules.OwnerOf(params.Name)
	if !ok {
		return modules.Failure(modules.KindUnknownTool, "unknown tool: "+params.Name), nil
	}
	result := modules.Run(ctx, moduleName, params.Name, params.Arguments)

	// Apply compact format unless format=json is explicitly requested
	if !result.IsError {
		if f, _ := params.Arguments["format"].(string); f != "json" {
			result.Content[0].Text = modules.ApplyCompact(moduleName, params.Name, result.Content[0].Text)
		}
	}

	return result, nil
}
