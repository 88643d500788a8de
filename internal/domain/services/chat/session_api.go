package chat

import (
	"context"

	"chatrelay/internal/domain/models/chat"
)

// SessionAPI is the remote, stateful conversation API (threads and runs).
// Implementations translate provider SDK types into domain models.
type SessionAPI interface {
	// CreateSession creates a new remote conversation and returns its handle
	CreateSession(ctx context.Context) (string, error)

	// AppendMessage adds a message to the remote transcript
	AppendMessage(ctx context.Context, handle, role, text string) error

	// StartRun starts an asynchronous run over the session and returns its handle
	StartRun(ctx context.Context, handle string) (string, error)

	// GetRun fetches the current status of a run, including pending tool calls
	GetRun(ctx context.Context, handle, runHandle string) (*chat.Run, error)

	// SubmitToolOutputs answers every pending tool call of a run in one request
	SubmitToolOutputs(ctx context.Context, handle, runHandle string, outputs []chat.ToolOutput) error

	// ListMessages returns the session transcript. order is "asc" or "desc".
	ListMessages(ctx context.Context, handle string, order string) ([]chat.Message, error)
}

// CompletionAPI is the stateless single-turn completion API
type CompletionAPI interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
