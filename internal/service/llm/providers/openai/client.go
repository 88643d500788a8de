package openai

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// NewSDKClient constructs the go-openai client shared by the assistants and
// completion adapters. baseURL may be empty for the public API.
func NewSDKClient(apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.AssistantVersion = "v2"

	return openai.NewClientWithConfig(cfg), nil
}
