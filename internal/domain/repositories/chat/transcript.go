package chat

import (
	"context"

	"chatrelay/internal/domain/models/chat"
)

// TranscriptRepository defines data access for persisted transcript records
type TranscriptRepository interface {
	// Append inserts a record. ID and CreatedAt are assigned if empty.
	Append(ctx context.Context, record *chat.TranscriptRecord) error

	// List returns records matching the filter, newest first.
	// Returns an empty slice if nothing matches.
	List(ctx context.Context, filter chat.TranscriptFilter) ([]chat.TranscriptRecord, error)

	// Each streams matching records oldest first, calling fn once per record.
	// Iteration stops at the first error returned by fn.
	Each(ctx context.Context, filter chat.TranscriptFilter, fn func(chat.TranscriptRecord) error) error
}
