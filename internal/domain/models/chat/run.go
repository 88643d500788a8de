package chat

// RunStatus is the lifecycle state of a remote run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// IsTerminal reports whether the run can no longer change state.
// requires_action is a suspend point, not a terminal state.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	default:
		return false
	}
}

// Run is a snapshot of the remote asynchronous job backing one turn.
type Run struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	Status   RunStatus `json:"status"`

	// PendingToolCalls is populated only while Status is requires_action.
	PendingToolCalls []ToolCall `json:"pending_tool_calls,omitempty"`

	// LastError carries the provider's reason for a failed run, if any.
	LastError string `json:"last_error,omitempty"`
}

// ToolCall is one function call requested by the remote model.
// Arguments is the raw JSON blob as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolOutput answers a ToolCall. Output is a JSON-encoded result.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}
