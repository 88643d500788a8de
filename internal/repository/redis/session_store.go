package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	chatRepo "chatrelay/internal/domain/repositories/chat"
)

// SessionStore keeps conversation-key mappings in Redis so every instance of
// the service sees the same sessions. Keys are written without expiry.
type SessionStore struct {
	client *goredis.Client
	prefix string
}

var _ chatRepo.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps an existing client. prefix namespaces every key.
func NewSessionStore(client *goredis.Client, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

// Connect parses a redis:// URL, creates a client and pings it.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *SessionStore) key(k string) string {
	return s.prefix + k
}

// Get returns the stored handle for key
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	handle, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get session: %w", err)
	}
	return handle, true, nil
}

// Put stores handle for key, overwriting any existing entry
func (s *SessionStore) Put(ctx context.Context, key, handle string) error {
	if err := s.client.Set(ctx, s.key(key), handle, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// PutIfAbsent stores handle with SETNX. If another caller won the race, the
// winner's handle is returned and the given one is left unused.
func (s *SessionStore) PutIfAbsent(ctx context.Context, key, handle string) (string, error) {
	stored, err := s.client.SetNX(ctx, s.key(key), handle, 0).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx session: %w", err)
	}
	if stored {
		return handle, nil
	}

	existing, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		// Deleted between SETNX and GET; claim it.
		return handle, s.Put(ctx, key, handle)
	}
	return existing, nil
}
