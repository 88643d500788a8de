package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	_, ok, err := store.Get(ctx, "lead-42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "lead-42", "thread_a"))
	handle, ok, err := store.Get(ctx, "lead-42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "thread_a", handle)
}

func TestSessionStore_PutIfAbsentIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	got, err := store.PutIfAbsent(ctx, "k", "thread_a")
	require.NoError(t, err)
	assert.Equal(t, "thread_a", got)

	got, err = store.PutIfAbsent(ctx, "k", "thread_b")
	require.NoError(t, err)
	assert.Equal(t, "thread_b", got)

	handle, _, _ := store.Get(ctx, "k")
	assert.Equal(t, "thread_b", handle)
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(ctx, fmt.Sprintf("key_%d", i), fmt.Sprintf("thread_%d", i))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _, _ = store.Get(ctx, fmt.Sprintf("key_%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
