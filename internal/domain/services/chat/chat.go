package chat

import (
	"context"
	"strings"

	"chatrelay/internal/domain/models/chat"
)

// ChatService resolves one user message into an assistant reply
type ChatService interface {
	// ProcessTurn runs a single turn to completion.
	// Returns domain.ErrValidation for bad input, or one of the turn-level
	// errors (SubmissionError, PollError, RunTerminatedError, RunTimeoutError).
	ProcessTurn(ctx context.Context, req *TurnRequest) (*chat.TurnResult, error)
}

// TranscriptSink durably records transcript entries.
// Append is fire-and-forget: implementations observe failures but never return them.
type TranscriptSink interface {
	Append(ctx context.Context, record chat.TranscriptRecord)
}

// TranscriptService serves admin listing and export of stored transcripts
type TranscriptService interface {
	// List validates the filter and returns matching records, newest first
	List(ctx context.Context, filter *chat.TranscriptFilter) ([]chat.TranscriptRecord, error)

	// Export validates the filter and streams matching records, oldest first
	Export(ctx context.Context, filter *chat.TranscriptFilter, fn func(chat.TranscriptRecord) error) error
}

// TurnRequest is the DTO for POST /chat
type TurnRequest struct {
	Message         string  `json:"message"`
	ConversationKey *string `json:"conversation_key,omitempty"`
}

// Key returns the trimmed conversation key, or "" when absent
func (r *TurnRequest) Key() string {
	if r.ConversationKey == nil {
		return ""
	}
	return strings.TrimSpace(*r.ConversationKey)
}
