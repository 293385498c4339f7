// ABOUTME: Opaque token generation for authenticated sessions
// ABOUTME: High-entropy random values; validity lives in the durable token store

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// DefaultTokenBytes is the entropy of generated tokens. 32 bytes gives a
// collision probability that is cryptographically negligible.
const DefaultTokenBytes = 32

// MinTokenBytes guards against configs that would weaken token entropy.
const MinTokenBytes = 16

// ErrWeakToken is returned when the configured token size is below MinTokenBytes.
var ErrWeakToken = errors.New("token size below minimum")

// generateToken returns a hex-encoded random token of n bytes.
// Tokens are opaque: nothing is derivable from the value itself, so the
// token store remains the sole authority on validity and ownership.
func generateToken(n int) (string, error) {
	if n < MinTokenBytes {
		return "", ErrWeakToken
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
