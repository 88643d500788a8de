package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

// CompletionService answers each message with one stateless completion call.
// The conversation key only tags transcript records.
type CompletionService struct {
	api          chatSvc.CompletionAPI
	systemPrompt string
	sink         chatSvc.TranscriptSink
	logger       *slog.Logger
}

var _ chatSvc.ChatService = (*CompletionService)(nil)

// NewCompletionService creates the single-turn chat backend
func NewCompletionService(api chatSvc.CompletionAPI, systemPrompt string, sink chatSvc.TranscriptSink, logger *slog.Logger) *CompletionService {
	if sink == nil {
		sink = NopSink{}
	}
	return &CompletionService{
		api:          api,
		systemPrompt: systemPrompt,
		sink:         sink,
		logger:       logger,
	}
}

// ProcessTurn implements chatSvc.ChatService.
func (s *CompletionService) ProcessTurn(ctx context.Context, req *chatSvc.TurnRequest) (*chat.TurnResult, error) {
	if err := validateTurnRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := req.Key()
	if key == "" {
		key = uuid.NewString()
	}
	s.sink.Append(ctx, chat.TranscriptRecord{
		SessionKey: key,
		Role:       chat.RoleUser,
		Content:    req.Message,
	})

	reply, err := s.api.Complete(ctx, s.systemPrompt, req.Message)
	if err != nil {
		s.logger.Warn("completion failed", "conversation_key", key, "error", err)
		return nil, &domain.SubmissionError{Op: "complete", Err: err}
	}

	s.sink.Append(ctx, chat.TranscriptRecord{
		SessionKey: key,
		Role:       chat.RoleAssistant,
		Content:    reply,
	})

	s.logger.Info("completion turn finished", "conversation_key", key, "reply_length", len(reply))

	return &chat.TurnResult{Reply: reply}, nil
}
