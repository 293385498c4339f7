// ABOUTME: Auth service orchestrating login, logout, and per-call authorization
// ABOUTME: Binds token to user to context owner; the only component comparing the two relations

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamelab/tame/internal/store"
)

// Auth errors returned by Login and Logout.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// ContextRegistry resolves a context identifier to its owning user.
// Context creation is a collaborator responsibility; ownership is immutable
// once observed here.
type ContextRegistry interface {
	ContextOwner(ctx context.Context, contextID string) (string, error)
}

// Service issues tokens on login, revokes them on logout, and evaluates
// every (token, context) pair presented by either access mode.
type Service struct {
	creds      CredentialVerifier
	tokens     store.TokenStore
	contexts   ContextRegistry
	audit      store.AuditStore
	logger     *slog.Logger
	tokenBytes int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTokenBytes overrides the entropy of issued tokens.
func WithTokenBytes(n int) Option {
	return func(s *Service) { s.tokenBytes = n }
}

// WithAudit enables audit logging of login/logout events.
func WithAudit(audit store.AuditStore) Option {
	return func(s *Service) { s.audit = audit }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService creates an auth service over the given collaborators.
func NewService(creds CredentialVerifier, tokens store.TokenStore, contexts ContextRegistry, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		creds:      creds,
		tokens:     tokens,
		contexts:   contexts,
		logger:     logger.With("component", "auth"),
		tokenBytes: DefaultTokenBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials and issues a fresh token. If the user already
// holds a valid token it is invalidated as a side effect of the atomic
// replacement in the token store (single-active-session). A failed login
// never creates or touches a token.
func (s *Service) Login(ctx context.Context, username, credential string) (string, error) {
	ok, err := s.creds.Verify(ctx, username, credential)
	if err != nil {
		return "", fmt.Errorf("verifying credentials: %w", err)
	}
	if !ok {
		s.logger.Warn("login rejected", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := generateToken(s.tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	if err := s.tokens.IssueToken(ctx, &store.AuthToken{
		Token:    token,
		Username: username,
		IssuedAt: s.now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("login", "username", username)
	s.appendAudit(ctx, username, store.AuditLogin, "token", "")
	return token, nil
}

// Authorize evaluates (token, contextID) and returns a Decision. The check is
// pure: it mutates nothing, and callers in stateless mode must re-run it for
// every call. The token resolution is a single step so a future expiry check
// can slot in without changing the contract.
func (s *Service) Authorize(ctx context.Context, token, contextID string) (Decision, error) {
	if token == "" {
		return Denied(ReasonNotAuthenticated), nil
	}

	tok, err := s.tokens.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Denied(ReasonInvalidToken), nil
		}
		return Decision{}, fmt.Errorf("resolving token: %w", err)
	}

	owner, err := s.contexts.ContextOwner(ctx, contextID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("authorize denied", "reason", ReasonUnknownContext, "context_id", contextID)
			return Denied(ReasonUnknownContext), nil
		}
		return Decision{}, fmt.Errorf("resolving context owner: %w", err)
	}

	if owner != tok.Username {
		s.logger.Warn("context owner mismatch",
			"username", tok.Username,
			"context_id", contextID,
		)
		return Denied(ReasonOwnerMismatch), nil
	}

	return Granted(tok.Username), nil
}

// Identify resolves a token to its holding user without consulting any
// context. Unknown or revoked tokens return ErrNotAuthenticated.
func (s *Service) Identify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	tok, err := s.tokens.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("resolving token: %w", err)
	}
	return tok.Username, nil
}

// Logout revokes the token. After a successful logout any authorize call
// presenting the same token value is denied with ReasonInvalidToken.
// Logging out an unknown or already-revoked token returns ErrNotAuthenticated.
func (s *Service) Logout(ctx context.Context, token string) error {
	tok, err := s.tokens.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("resolving token: %w", err)
	}

	if err := s.tokens.RevokeToken(ctx, token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Revoked between resolve and revoke; the outcome is the same.
			return ErrNotAuthenticated
		}
		return fmt.Errorf("revoking token: %w", err)
	}

	s.logger.Info("logout", "username", tok.Username)
	s.appendAudit(ctx, tok.Username, store.AuditLogout, "token", "")
	return nil
}

// appendAudit records an audit entry when auditing is enabled. Best effort.
func (s *Service) appendAudit(ctx context.Context, actor string, action store.AuditAction, targetType, targetID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AppendAuditLog(ctx, &store.AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}); err != nil {
		s.logger.Error("audit append failed", "action", action, "error", err)
	}
}
