package chat

import (
	"context"
	"fmt"
	"log/slog"

	"chatrelay/internal/config"
	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

// TranscriptService serves the admin transcript routes
type TranscriptService struct {
	repo   chatRepo.TranscriptRepository
	logger *slog.Logger
}

var _ chatSvc.TranscriptService = (*TranscriptService)(nil)

// NewTranscriptService creates the admin transcript service
func NewTranscriptService(repo chatRepo.TranscriptRepository, logger *slog.Logger) *TranscriptService {
	return &TranscriptService{
		repo:   repo,
		logger: logger,
	}
}

// List returns one page of records, newest first
func (s *TranscriptService) List(ctx context.Context, filter *chat.TranscriptFilter) ([]chat.TranscriptRecord, error) {
	if err := validateTranscriptFilter(filter, config.MaxTranscriptPageSize); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if filter.Limit == 0 {
		filter.Limit = config.DefaultTranscriptPageSize
	}

	records, err := s.repo.List(ctx, *filter)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Export streams every matching record, oldest first, up to config.MaxExportRows
func (s *TranscriptService) Export(ctx context.Context, filter *chat.TranscriptFilter, fn func(chat.TranscriptRecord) error) error {
	if err := validateTranscriptFilter(filter, config.MaxExportRows); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if filter.Limit == 0 {
		filter.Limit = config.MaxExportRows
	}

	count := 0
	err := s.repo.Each(ctx, *filter, func(record chat.TranscriptRecord) error {
		count++
		return fn(record)
	})
	if err != nil {
		return err
	}

	s.logger.Info("transcripts exported",
		"rows", count,
		"session_key", filter.SessionKey,
		"role", filter.Role,
	)
	return nil
}
