package chat

import "time"

// Message roles used on the remote transcript and in stored records.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a remote session transcript.
// Text is the concatenation of the message's text parts.
type Message struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Text string `json:"text"`
}

// ToolInvocation records a tool call made while resolving a turn.
type ToolInvocation struct {
	CallID string                 `json:"call_id"`
	Name   string                 `json:"name"`
	Args   map[string]interface{} `json:"args"`
	Result map[string]interface{} `json:"result"`
}

// TurnResult is the outcome of a successful turn.
type TurnResult struct {
	// Reply is never nil-ish: an absent assistant message yields "".
	Reply           string           `json:"reply"`
	SideEffectID    *string          `json:"side_effect_id,omitempty"`
	SessionHandle   string           `json:"-"`
	RunHandle       string           `json:"-"`
	ToolInvocations []ToolInvocation `json:"-"`
}

// TranscriptRecord is one persisted, role-tagged message.
type TranscriptRecord struct {
	ID         string                 `json:"id" db:"id"`
	SessionKey string                 `json:"session_key" db:"session_key"`
	Role       string                 `json:"role" db:"role"` // "user", "assistant" or "tool"
	Content    string                 `json:"content" db:"content"`
	ToolName   *string                `json:"tool_name,omitempty" db:"tool_name"`
	ToolArgs   map[string]interface{} `json:"tool_args,omitempty" db:"tool_args"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// TranscriptFilter narrows admin listing and export queries.
// Zero values mean "no constraint".
type TranscriptFilter struct {
	SessionKey string     `json:"session_key"`
	Role       string     `json:"role"`
	Query      string     `json:"q"`
	Since      *time.Time `json:"since,omitempty"`
	Until      *time.Time `json:"until,omitempty"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}
