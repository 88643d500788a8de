package tools

import "context"

// ToolExecutor defines the interface for executing a tool.
// Implementations must be thread-safe and respect context cancellation.
type ToolExecutor interface {
	// Execute runs the tool with the given arguments.
	// The input map holds the model-supplied arguments and may be empty.
	// The returned value must be JSON-serializable; a map result with an "id"
	// key is treated as the identifier of a record the tool created.
	Execute(ctx context.Context, input map[string]interface{}) (interface{}, error)
}
