package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

// messagePageSize bounds how much of a thread ListMessages reads per call.
const messagePageSize = 20

// ThreadClient captures the subset of the go-openai client used for threads and runs.
type ThreadClient interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// AssistantsClient implements chatSvc.SessionAPI on the OpenAI Assistants API:
// sessions are threads, runs are assistant runs over a thread.
type AssistantsClient struct {
	threads     ThreadClient
	assistantID string
}

var _ chatSvc.SessionAPI = (*AssistantsClient)(nil)

// NewAssistantsClient builds a SessionAPI from a thread client and an assistant ID.
func NewAssistantsClient(threads ThreadClient, assistantID string) (*AssistantsClient, error) {
	if threads == nil {
		return nil, errors.New("openai thread client is required")
	}
	if assistantID == "" {
		return nil, errors.New("assistant ID is required")
	}
	return &AssistantsClient{threads: threads, assistantID: assistantID}, nil
}

// CreateSession creates an empty thread.
func (c *AssistantsClient) CreateSession(ctx context.Context) (string, error) {
	thread, err := c.threads.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("openai create thread: %w", err)
	}
	return thread.ID, nil
}

// AppendMessage adds a message to the thread.
func (c *AssistantsClient) AppendMessage(ctx context.Context, handle, role, text string) error {
	_, err := c.threads.CreateMessage(ctx, handle, openai.MessageRequest{
		Role:    role,
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("openai create message: %w", err)
	}
	return nil
}

// StartRun starts the configured assistant on the thread.
func (c *AssistantsClient) StartRun(ctx context.Context, handle string) (string, error) {
	run, err := c.threads.CreateRun(ctx, handle, openai.RunRequest{AssistantID: c.assistantID})
	if err != nil {
		return "", fmt.Errorf("openai create run: %w", err)
	}
	return run.ID, nil
}

// GetRun retrieves the run and translates it to the domain model.
func (c *AssistantsClient) GetRun(ctx context.Context, handle, runHandle string) (*chat.Run, error) {
	run, err := c.threads.RetrieveRun(ctx, handle, runHandle)
	if err != nil {
		return nil, fmt.Errorf("openai retrieve run: %w", err)
	}
	return translateRun(run), nil
}

// SubmitToolOutputs answers every pending tool call of the run at once.
func (c *AssistantsClient) SubmitToolOutputs(ctx context.Context, handle, runHandle string, outputs []chat.ToolOutput) error {
	req := openai.SubmitToolOutputsRequest{
		ToolOutputs: make([]openai.ToolOutput, 0, len(outputs)),
	}
	for _, o := range outputs {
		req.ToolOutputs = append(req.ToolOutputs, openai.ToolOutput{
			ToolCallID: o.ToolCallID,
			Output:     o.Output,
		})
	}

	if _, err := c.threads.SubmitToolOutputs(ctx, handle, runHandle, req); err != nil {
		return fmt.Errorf("openai submit tool outputs: %w", err)
	}
	return nil
}

// ListMessages returns the most recent page of the thread in the given order.
func (c *AssistantsClient) ListMessages(ctx context.Context, handle string, order string) ([]chat.Message, error) {
	limit := messagePageSize
	if order != "asc" {
		order = "desc"
	}

	list, err := c.threads.ListMessage(ctx, handle, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("openai list messages: %w", err)
	}

	messages := make([]chat.Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		messages = append(messages, chat.Message{
			ID:   m.ID,
			Role: m.Role,
			Text: messageText(m),
		})
	}
	return messages, nil
}

// translateRun maps an OpenAI run to the domain Run.
// Unknown statuses pass through unchanged so the poller treats them as pending.
func translateRun(run openai.Run) *chat.Run {
	out := &chat.Run{
		ID:       run.ID,
		ThreadID: run.ThreadID,
		Status:   chat.RunStatus(run.Status),
	}

	if run.LastError != nil {
		out.LastError = run.LastError.Message
	}

	if run.RequiredAction != nil && run.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			out.PendingToolCalls = append(out.PendingToolCalls, chat.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}

	return out
}

// messageText joins the text parts of a thread message, ignoring images and files.
func messageText(m openai.Message) string {
	var parts []string
	for _, c := range m.Content {
		if c.Text == nil {
			continue
		}
		if v := strings.TrimSpace(c.Text.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}
