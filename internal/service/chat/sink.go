package chat

import (
	"context"
	"log/slog"
	"time"

	"chatrelay/internal/domain/models/chat"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

// BestEffortSink writes transcript records through a repository.
// Failures are logged and swallowed; a turn never fails because of them.
type BestEffortSink struct {
	repo    chatRepo.TranscriptRepository
	timeout time.Duration
	logger  *slog.Logger
}

var _ chatSvc.TranscriptSink = (*BestEffortSink)(nil)

// NewBestEffortSink creates a sink that bounds each write by timeout
func NewBestEffortSink(repo chatRepo.TranscriptRepository, timeout time.Duration, logger *slog.Logger) *BestEffortSink {
	return &BestEffortSink{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

// Append implements chatSvc.TranscriptSink.
// The write outlives a cancelled request context but not the sink's own timeout.
func (s *BestEffortSink) Append(ctx context.Context, record chat.TranscriptRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("transcript append panicked",
				"session_key", record.SessionKey,
				"role", record.Role,
				"panic", r,
			)
		}
	}()

	if err := s.repo.Append(ctx, &record); err != nil {
		s.logger.Warn("transcript append failed",
			"session_key", record.SessionKey,
			"role", record.Role,
			"error", err,
		)
	}
}

// NopSink discards every record. Used when persistence is disabled.
type NopSink struct{}

// Append implements chatSvc.TranscriptSink.
func (NopSink) Append(context.Context, chat.TranscriptRecord) {}
