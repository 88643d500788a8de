package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ToolCall represents a single tool invocation request.
type ToolCall struct {
	ID    string                 `json:"id"`    // tool_call_id from the remote run
	Name  string                 `json:"name"`  // tool name as the model spelled it
	Input map[string]interface{} `json:"input"` // parsed arguments
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	ID      string      `json:"id"`       // tool_call_id (matches ToolCall.ID)
	Name    string      `json:"name"`     // tool name (matches ToolCall.Name)
	Result  interface{} `json:"result"`   // execution result (nil if error)
	Error   error       `json:"error"`    // execution error (nil if success)
	IsError bool        `json:"is_error"` // whether execution failed
}

// Payload renders the result as the structured object handed back to the model.
// Failures become {ok: false, error: <message>}; map results get ok: true
// unless the tool already set it; other values are wrapped under "result".
func (r ToolResult) Payload() map[string]interface{} {
	if r.IsError {
		msg := "tool failed"
		if r.Error != nil {
			msg = r.Error.Error()
		}
		return map[string]interface{}{"ok": false, "error": msg}
	}

	if m, ok := r.Result.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m)+1)
		for k, v := range m {
			out[k] = v
		}
		if _, set := out["ok"]; !set {
			out["ok"] = true
		}
		return out
	}

	return map[string]interface{}{"ok": true, "result": r.Result}
}

// Output returns Payload encoded as JSON.
func (r ToolResult) Output() string {
	data, err := json.Marshal(r.Payload())
	if err != nil {
		data, _ = json.Marshal(map[string]interface{}{
			"ok":    false,
			"error": fmt.Sprintf("encode tool result: %v", err),
		})
	}
	return string(data)
}

// ParseArguments decodes a tool call's JSON argument blob.
// Malformed or non-object JSON yields an empty map; model output is best-effort.
func ParseArguments(raw string) map[string]interface{} {
	args := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]interface{}{}
	}
	return args
}

// ToolRegistry manages tool executors and handles tool execution.
// Several names (aliases) may resolve to the same canonical tool.
// It is thread-safe and can be used concurrently.
type ToolRegistry struct {
	mu        sync.RWMutex
	executors map[string]ToolExecutor
	aliases   map[string]string // alias -> canonical name
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		executors: make(map[string]ToolExecutor),
		aliases:   make(map[string]string),
	}
}

// Register adds a tool executor under its canonical name.
// If a tool with the same name already exists, it will be replaced.
func (r *ToolRegistry) Register(name string, executor ToolExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

// Alias makes alias resolve to the canonical tool name.
func (r *ToolRegistry) Alias(alias, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[alias] = canonical
}

// Resolve maps a name or alias to its canonical name.
// Returns false if nothing is registered under it.
func (r *ToolRegistry) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.executors[name]; ok {
		return name, true
	}
	if canonical, ok := r.aliases[name]; ok {
		if _, ok := r.executors[canonical]; ok {
			return canonical, true
		}
	}
	return "", false
}

// Get retrieves a tool executor by name or alias.
// Returns nil if the tool is not registered.
func (r *ToolRegistry) Get(name string) ToolExecutor {
	canonical, ok := r.Resolve(name)
	if !ok {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[canonical]
}

// Names returns the canonical tool names.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	return names
}

// Execute runs a single tool and returns the result.
// Unknown names and executor failures are reported in the result, never as a panic or error return.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) ToolResult {
	executor := r.Get(call.Name)
	if executor == nil {
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Error:   fmt.Errorf("unknown function: %s", call.Name),
			IsError: true,
		}
	}

	input := call.Input
	if input == nil {
		input = map[string]interface{}{}
	}

	result, err := safeExecute(ctx, executor, input)
	if err != nil {
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Error:   err,
			IsError: true,
		}
	}

	return ToolResult{
		ID:     call.ID,
		Name:   call.Name,
		Result: result,
	}
}

// safeExecute turns a panicking executor into an error result.
func safeExecute(ctx context.Context, executor ToolExecutor, input map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("tool panicked: %v", p)
		}
	}()
	return executor.Execute(ctx, input)
}

// ExecuteParallel runs multiple tools concurrently and returns results in the same order.
// Context cancellation is reported per call as an error result.
func (r *ToolRegistry) ExecuteParallel(ctx context.Context, calls []ToolCall) []ToolResult {
	if len(calls) == 0 {
		return []ToolResult{}
	}

	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(index int, toolCall ToolCall) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[index] = ToolResult{
					ID:      toolCall.ID,
					Name:    toolCall.Name,
					Error:   ctx.Err(),
					IsError: true,
				}
				return
			default:
			}

			results[index] = r.Execute(ctx, toolCall)
		}(i, call)
	}

	wg.Wait()

	return results
}
