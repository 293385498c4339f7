// ABOUTME: Tests for token issuance, resolution, and revocation
// ABOUTME: Covers the atomic single-active-session replacement guarantee

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_IssueAndResolveToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")

	err := store.IssueToken(ctx, &AuthToken{
		Token:    "tok-1",
		Username: "alice",
		IssuedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	tok, err := store.ResolveToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", tok.Username)
	assert.False(t, tok.IssuedAt.IsZero())
}

func TestStore_ResolveToken_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ResolveToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IssueToken_ReplacesPrior(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")

	require.NoError(t, store.IssueToken(ctx, &AuthToken{Token: "tok-old", Username: "alice", IssuedAt: time.Now()}))
	require.NoError(t, store.IssueToken(ctx, &AuthToken{Token: "tok-new", Username: "alice", IssuedAt: time.Now()}))

	// Old token must be gone, new one valid.
	_, err := store.ResolveToken(ctx, "tok-old")
	assert.ErrorIs(t, err, ErrNotFound)

	tok, err := store.ResolveToken(ctx, "tok-new")
	require.NoError(t, err)
	assert.Equal(t, "alice", tok.Username)
}

func TestStore_RevokeToken(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")

	require.NoError(t, store.IssueToken(ctx, &AuthToken{Token: "tok-1", Username: "alice", IssuedAt: time.Now()}))

	err := store.RevokeToken(ctx, "tok-1")
	require.NoError(t, err)

	_, err = store.ResolveToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Second revoke reports NotFound, never an internal error.
	err = store.RevokeToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IssueToken_ConcurrentSameUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, store, "alice")

	const n = 8
	var wg sync.WaitGroup
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := &AuthToken{
				Token:    "tok-" + string(rune('a'+i)),
				Username: "alice",
				IssuedAt: time.Now(),
			}
			tokens[i] = tok.Token
			_ = store.IssueToken(ctx, tok)
		}(i)
	}
	wg.Wait()

	// Exactly one token may remain valid for the user.
	valid := 0
	for _, token := range tokens {
		if _, err := store.ResolveToken(ctx, token); err == nil {
			valid++
		}
	}
	assert.Equal(t, 1, valid, "concurrent issuance must never leave two valid tokens")
}
