// ABOUTME: Tests for bcrypt credential verification
// ABOUTME: Unknown users and wrong passwords must fail identically

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamelab/tame/internal/store"
)

// fakeUserLookup returns canned users without a database.
type fakeUserLookup struct {
	users map[string]*store.User
	err   error
}

func (f *fakeUserLookup) GetUser(_ context.Context, username string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func TestBcryptVerifier_Verify(t *testing.T) {
	hash, err := HashPassword("pw1", 4)
	require.NoError(t, err)

	v := NewBcryptVerifier(&fakeUserLookup{users: map[string]*store.User{
		"alice": {Username: "alice", PasswordHash: hash},
	}})
	ctx := context.Background()

	ok, err := v.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown user is indistinguishable from a wrong password.
	ok, err = v.Verify(ctx, "mallory", "pw1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptVerifier_StoreError(t *testing.T) {
	storeErr := errors.New("disk on fire")
	v := NewBcryptVerifier(&fakeUserLookup{err: storeErr})

	_, err := v.Verify(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, storeErr)
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword("secret", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)
}
