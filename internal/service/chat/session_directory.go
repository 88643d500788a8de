package chat

import (
	"context"
	"log/slog"

	"chatrelay/internal/domain"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

// SessionDirectory maps client conversation keys to remote session handles.
// Sessions are created lazily on the first message bearing a new key.
type SessionDirectory struct {
	api    chatSvc.SessionAPI
	store  chatRepo.SessionStore
	logger *slog.Logger
}

// NewSessionDirectory creates a session directory backed by store
func NewSessionDirectory(api chatSvc.SessionAPI, store chatRepo.SessionStore, logger *slog.Logger) *SessionDirectory {
	return &SessionDirectory{
		api:    api,
		store:  store,
		logger: logger,
	}
}

// Resolve returns the session handle for key.
// An empty key always yields a fresh, unstored session.
func (d *SessionDirectory) Resolve(ctx context.Context, key string) (string, error) {
	if key == "" {
		return d.create(ctx)
	}

	handle, ok, err := d.store.Get(ctx, key)
	if err != nil {
		return "", &domain.SubmissionError{Op: "lookup_session", Err: err}
	}
	if ok {
		return handle, nil
	}

	handle, err = d.create(ctx)
	if err != nil {
		return "", err
	}

	stored, err := d.store.PutIfAbsent(ctx, key, handle)
	if err != nil {
		// The remote session exists; this turn can still use it.
		d.logger.Warn("failed to store session mapping",
			"conversation_key", key,
			"session_handle", handle,
			"error", err,
		)
		return handle, nil
	}
	if stored != handle {
		d.logger.Info("lost session creation race, using stored handle",
			"conversation_key", key,
			"orphaned_handle", handle,
			"session_handle", stored,
		)
	}

	return stored, nil
}

func (d *SessionDirectory) create(ctx context.Context) (string, error) {
	handle, err := d.api.CreateSession(ctx)
	if err != nil {
		return "", &domain.SubmissionError{Op: "create_session", Err: err}
	}
	d.logger.Debug("remote session created", "session_handle", handle)
	return handle, nil
}
