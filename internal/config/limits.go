package config

const (
	// MaxMessageLength is the maximum length (in runes) of a user chat message.
	// Widget input is free text; anything longer is almost certainly a paste
	// accident and would only burn model context.
	MaxMessageLength = 8000

	// MaxConversationKeyLength is the maximum length for client conversation keys.
	// Keys are opaque but end up as Redis keys and a VARCHAR column.
	MaxConversationKeyLength = 255

	// DefaultTranscriptPageSize is the admin listing page size when no limit is given.
	DefaultTranscriptPageSize = 50

	// MaxTranscriptPageSize caps a single admin listing page.
	MaxTranscriptPageSize = 500

	// MaxExportRows caps a single CSV/NDJSON export
	MaxExportRows = 100000
)
