package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	chatSvc "chatrelay/internal/domain/services/chat"
)

// ChatClient captures the subset of the go-openai client used for completions.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionClient implements chatSvc.CompletionAPI via the Chat Completions API.
type CompletionClient struct {
	chat  ChatClient
	model string
}

var _ chatSvc.CompletionAPI = (*CompletionClient)(nil)

// NewCompletionClient builds a CompletionAPI for the given model.
func NewCompletionClient(chat ChatClient, model string) (*CompletionClient, error) {
	if chat == nil {
		return nil, errors.New("openai chat client is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}
	return &CompletionClient{chat: chat, model: model}, nil
}

// Complete sends the system prompt and user text as one request.
// A response without choices yields "".
func (c *CompletionClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
