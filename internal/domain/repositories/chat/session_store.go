package chat

import "context"

// SessionStore maps conversation keys to remote session handles.
// Entries are never evicted by this system.
type SessionStore interface {
	// Get returns the stored handle and true, or "" and false if the key is unseen
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores the handle for key, overwriting any existing entry
	Put(ctx context.Context, key, handle string) error

	// PutIfAbsent stores handle only if key has no entry yet.
	// Returns the handle that is stored after the call: either the given one
	// or the one a concurrent writer stored first. Implementations that cannot
	// do this atomically fall back to last-write-wins and return handle.
	PutIfAbsent(ctx context.Context, key, handle string) (string, error)
}
