// ABOUTME: Tests for the session context registry
// ABOUTME: Ownership immutability, lookup failures, and message history

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateContext(t *testing.T, s *SQLiteStore, id, owner string) {
	t.Helper()
	err := s.CreateContext(context.Background(), &SessionContext{
		ID:        id,
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestStore_CreateContext(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")

	sc := &SessionContext{
		ID:        "alice-session-1",
		Owner:     "alice",
		Title:     "scratch",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateContext(ctx, sc))

	retrieved, err := store.GetContext(ctx, "alice-session-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Owner)
	assert.Equal(t, "scratch", retrieved.Title)
}

func TestStore_CreateContext_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")
	mustCreateContext(t, store, "ctx-1", "alice")

	err := store.CreateContext(ctx, &SessionContext{
		ID:        "ctx-1",
		Owner:     "alice",
		CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrContextExists)
}

func TestStore_ContextOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")
	mustCreateContext(t, store, "alice-session-1", "alice")

	owner, err := store.ContextOwner(ctx, "alice-session-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestStore_ContextOwner_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ContextOwner(context.Background(), "ghost-ctx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListContexts_ByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")
	mustCreateUser(t, store, "bob")
	mustCreateContext(t, store, "alice-1", "alice")
	mustCreateContext(t, store, "alice-2", "alice")
	mustCreateContext(t, store, "bob-1", "bob")

	contexts, err := store.ListContexts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, contexts, 2)

	all, err := store.ListContexts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_DeleteContext_WithMessages(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")
	mustCreateContext(t, store, "ctx-1", "alice")

	require.NoError(t, store.AppendMessage(ctx, &Message{
		ID:        "msg-1",
		ContextID: "ctx-1",
		Sender:    "alice",
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteContext(ctx, "ctx-1"))

	_, err := store.GetContext(ctx, "ctx-1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteContext(ctx, "ctx-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Messages_Chronological(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")
	mustCreateContext(t, store, "ctx-1", "alice")

	base := time.Now().UTC().Truncate(time.Second)
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, store.AppendMessage(ctx, &Message{
			ID:        content,
			ContextID: "ctx-1",
			Sender:    "alice",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	messages, err := store.ListMessages(ctx, "ctx-1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)

	limited, err := store.ListMessages(ctx, "ctx-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
