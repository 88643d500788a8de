package chat

import (
	"fmt"
	"log/slog"

	"chatrelay/internal/config"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
	"chatrelay/internal/service/llm/tools"
)

// Backends holds the remote APIs a chat backend may need.
// Only the one matching the configured backend must be set.
type Backends struct {
	Sessions   chatSvc.SessionAPI
	Completion chatSvc.CompletionAPI
}

// SetupChatService builds the ChatService selected by cfg.ChatBackend.
func SetupChatService(
	cfg *config.Config,
	backends Backends,
	store chatRepo.SessionStore,
	registry *tools.ToolRegistry,
	sink chatSvc.TranscriptSink,
	logger *slog.Logger,
) (chatSvc.ChatService, error) {
	switch cfg.ChatBackend {
	case config.BackendAssistant:
		if backends.Sessions == nil {
			return nil, fmt.Errorf("backend %q requires a session API", cfg.ChatBackend)
		}
		if store == nil || registry == nil {
			return nil, fmt.Errorf("backend %q requires a session store and tool registry", cfg.ChatBackend)
		}
		directory := NewSessionDirectory(backends.Sessions, store, logger)
		logger.Info("chat backend initialized",
			"backend", cfg.ChatBackend,
			"poll_interval", cfg.RunPollInterval,
			"timeout", cfg.RunTimeout,
			"tools", registry.Names(),
		)
		return NewOrchestrator(backends.Sessions, directory, registry, sink, RunConfig{
			PollInterval: cfg.RunPollInterval,
			Timeout:      cfg.RunTimeout,
		}, logger), nil

	case config.BackendCompletion:
		if backends.Completion == nil {
			return nil, fmt.Errorf("backend %q requires a completion API", cfg.ChatBackend)
		}
		logger.Info("chat backend initialized", "backend", cfg.ChatBackend, "model", cfg.OpenAIModel)
		return NewCompletionService(backends.Completion, cfg.SystemPrompt, sink, logger), nil

	default:
		return nil, fmt.Errorf("unknown chat backend %q", cfg.ChatBackend)
	}
}
