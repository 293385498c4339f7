// ABOUTME: Credential verification against stored bcrypt password hashes
// ABOUTME: Constant-time behavior for unknown users via a dummy hash comparison

package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tamelab/tame/internal/store"
)

// dummyHash is compared against when the user does not exist, so login timing
// does not reveal whether a username is registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1J1fBq1lO/7aN1uFJbhKYYSslRW8F8W"

// CredentialVerifier checks a username/credential pair.
// Implementations must not reveal through errors whether the user exists.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, credential string) (bool, error)
}

// UserLookup is the slice of the store the verifier needs.
type UserLookup interface {
	GetUser(ctx context.Context, username string) (*store.User, error)
}

// BcryptVerifier verifies credentials against bcrypt hashes in the user store.
type BcryptVerifier struct {
	users UserLookup
}

// NewBcryptVerifier creates a verifier backed by the given user store.
func NewBcryptVerifier(users UserLookup) *BcryptVerifier {
	return &BcryptVerifier{users: users}
}

// Verify reports whether the credential matches the stored hash for username.
// Unknown users burn a dummy bcrypt comparison to keep timing constant.
func (v *BcryptVerifier) Verify(ctx context.Context, username, credential string) (bool, error) {
	user, err := v.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(credential))
			return false, nil
		}
		return false, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return false, nil
	}
	return true, nil
}

// HashPassword produces a bcrypt hash for storage at account creation.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
