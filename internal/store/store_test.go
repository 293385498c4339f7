// ABOUTME: Tests for SQLite store setup and user account persistence
// ABOUTME: Uses a temporary on-disk database per test

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// mustCreateUser inserts a user or fails the test.
func mustCreateUser(t *testing.T, s *SQLiteStore, username string) {
	t.Helper()
	err := s.CreateUser(context.Background(), &User{
		Username:     username,
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &User{
		Username:     "alice",
		PasswordHash: "hash-alice",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	err := store.CreateUser(ctx, user)
	require.NoError(t, err)

	retrieved, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "hash-alice", retrieved.PasswordHash)
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, store, "alice")

	err := store.CreateUser(ctx, &User{
		Username:     "alice",
		PasswordHash: "other-hash",
		CreatedAt:    time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUser(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListUsers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, store, "alice")
	mustCreateUser(t, store, "bob")

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
