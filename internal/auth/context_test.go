// ABOUTME: Tests for identity propagation via context.Context
// ABOUTME: Round-trip, absence, and MustFromContext panic behavior

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityContext_RoundTrip(t *testing.T) {
	id := &Identity{User: "alice", ContextID: "alice-session-1", Token: "tok"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	assert.Equal(t, id, got)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
