package modules

import (
	"context"
	"sort"
	"time"

	"repomate/server/internal/middleware"
	"repomate/server/internal/observability"
)

// =============================================================================
// Registry
// =============================================================================

// registry holds all registered modules. Populated once at startup, read-only
// afterwards.
var registry = make(map[string]Module)

// RegisterModule adds a module to the registry
func RegisterModule(m Module) {
	registry[m.Name()] = m
}

// GetModule returns a module by name
func GetModule(name string) (Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// ListModules returns all registered module names, sorted.
func ListModules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllTools returns the tool definitions of every registered module, in module
// name order. This is the fixed registry exposed via tools/list.
func AllTools() []Tool {
	var tools []Tool
	for _, name := range ListModules() {
		tools = append(tools, registry[name].Tools()...)
	}
	return tools
}

// OwnerOf returns the name of the module that provides toolName.
func OwnerOf(toolName string) (string, bool) {
	for _, name := range ListModules() {
		if _, found := findTool(registry[name].Tools(), toolName); found {
			return name, true
		}
	}
	return "", false
}

// =============================================================================
// Tool Execution
// =============================================================================

// toolTimeout is the maximum duration for a single tool execution.
const toolTimeout = 30 * time.Second

// Failure builds the normalized error result shape. The message always
// carries the kind and a human-readable cause.
func Failure(kind ErrorKind, message string) *ToolCallResult {
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: string(kind) + ": " + message}},
		IsError: true,
	}
}

// failureFromErr reduces any tool error to the normalized failure shape.
func failureFromErr(err error) *ToolCallResult {
	if te, ok := err.(*ToolError); ok {
		return Failure(te.Kind, te.Message)
	}
	return Failure(KindOf(err), err.Error())
}

// Run executes a single tool in a module. Every outcome, success or failure,
// is returned as a structured result; nothing escapes as a fault.
func Run(ctx context.Context, moduleName, toolName string, params map[string]interface{}) *ToolCallResult {
	start := time.Now()

	m, ok := registry[moduleName]
	if !ok {
		return Failure(KindUnknownTool, "unknown module: "+moduleName)
	}

	tool, found := findTool(m.Tools(), toolName)
	if !found {
		return Failure(KindUnknownTool, "unknown tool: "+toolName)
	}

	validated, err := ValidateParams(tool.InputSchema, params)
	if err != nil {
		return failureFromErr(err)
	}

	// Bound external API calls so an unresponsive upstream surfaces as an
	// error instead of hanging the caller.
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	result, err := m.ExecuteTool(ctx, toolName, validated)
	durationMs := time.Since(start).Milliseconds()
	requestID := middleware.GetRequestID(ctx)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = Errorf(KindUpstream, "request to %s timed out after %s", moduleName, toolTimeout)
		}
		observability.LogToolCall(requestID, moduleName, toolName, durationMs, "error", err.Error())
		return failureFromErr(err)
	}

	observability.LogToolCall(requestID, moduleName, toolName, durationMs, "success", "")
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: result}},
	}
}

// ApplyCompact converts a JSON result to compact format (CSV/MD) for a given
// module and tool. Returns the original JSON if the module has no
// CompactConverter.
func ApplyCompact(moduleName, toolName, jsonResult string) string {
	m, ok := registry[moduleName]
	if !ok {
		return jsonResult
	}
	if converter, ok := m.(CompactConverter); ok {
		return converter.ToCompact(toolName, jsonResult)
	}
	return jsonResult
}
