// ABOUTME: Tests for audit log persistence
// ABOUTME: Verifies append defaults, actor filtering, and detail round-trip

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAuditLog_FillsDefaults(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entry := &AuditEntry{
		Actor:      "alice",
		Action:     AuditLogin,
		TargetType: "token",
		TargetID:   "tok-1",
		Detail:     map[string]any{"remote": "127.0.0.1"},
	}
	require.NoError(t, store.AppendAuditLog(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())

	entries, err := store.ListAuditLog(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, AuditLogin, entries[0].Action)
	assert.Equal(t, "127.0.0.1", entries[0].Detail["remote"])
}

func TestStore_ListAuditLog_FilterByActor(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, actor := range []string{"alice", "alice", "bob"} {
		require.NoError(t, store.AppendAuditLog(ctx, &AuditEntry{
			Actor:      actor,
			Action:     AuditLogout,
			TargetType: "token",
			TargetID:   "tok",
		}))
	}

	entries, err := store.ListAuditLog(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	all, err := store.ListAuditLog(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
