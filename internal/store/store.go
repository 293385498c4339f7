// ABOUTME: Store interfaces and data types for tame persistence
// ABOUTME: Defines User, AuthToken, SessionContext records and the store contracts

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when trying to create a user that already exists.
var ErrUserExists = errors.New("user already exists")

// ErrContextExists is returned when trying to create a context that already exists.
var ErrContextExists = errors.New("context already exists")

// User represents an account that can authenticate and own contexts.
type User struct {
	Username     string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// AuthToken maps an opaque token value to its owning user.
// Tokens are created at login and deleted at logout; they are never edited.
type AuthToken struct {
	Token    string
	Username string
	IssuedAt time.Time // persisted for a future expiry check, unused today
}

// SessionContext represents one ongoing conversational session.
// Ownership is fixed at creation and never changes.
type SessionContext struct {
	ID        string
	Owner     string
	Title     string
	CreatedAt time.Time
}

// Message is a single entry within a session context.
type Message struct {
	ID        string
	ContextID string
	Sender    string
	Content   string
	CreatedAt time.Time
}

// UserStore manages account records.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// TokenStore is the single source of truth for token validity.
// IssueToken replaces any existing token for the user atomically, so at most
// one token is valid per user at any instant.
type TokenStore interface {
	IssueToken(ctx context.Context, tok *AuthToken) error
	ResolveToken(ctx context.Context, token string) (*AuthToken, error)
	RevokeToken(ctx context.Context, token string) error
}

// ContextStore manages session contexts and their immutable ownership.
type ContextStore interface {
	CreateContext(ctx context.Context, sc *SessionContext) error
	GetContext(ctx context.Context, id string) (*SessionContext, error)
	ContextOwner(ctx context.Context, id string) (string, error)
	ListContexts(ctx context.Context, owner string) ([]*SessionContext, error)
	DeleteContext(ctx context.Context, id string) error
}

// MessageStore persists context-bound messages.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, contextID string, limit int) ([]*Message, error)
}

// Store aggregates all persistence contracts implemented by SQLiteStore.
type Store interface {
	UserStore
	TokenStore
	ContextStore
	MessageStore
	AuditStore

	// Close releases any resources held by the store
	Close() error
}
