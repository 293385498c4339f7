// ABOUTME: Stateful adapter for interactive use, a state machine over LoggedOut/LoggedIn
// ABOUTME: Caches the last granted identity/context for one process, cleared on logout

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tamelab/tame/internal/auth"
)

// State names the two interactive states.
type State string

const (
	StateLoggedOut State = "logged_out"
	StateLoggedIn  State = "logged_in"
)

// Session is the interactive adapter over the auth service. It holds the
// process-wide cached identity: current user, active context, and the token
// backing them. It is used by exactly one actor at a time and must never be
// shared across processes or used to back the stateless mode.
type Session struct {
	svc    *auth.Service
	logger *slog.Logger

	state     State
	user      string
	token     string
	contextID string
}

// New creates a session in the LoggedOut state.
func New(svc *auth.Service, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		svc:    svc,
		logger: logger.With("component", "session"),
		state:  StateLoggedOut,
	}
}

// State returns the current interactive state.
func (s *Session) State() State {
	return s.state
}

// CurrentUser returns the cached username, or "" while logged out.
func (s *Session) CurrentUser() string {
	return s.user
}

// ActiveContext returns the cached context id, or "" if none is active.
func (s *Session) ActiveContext() string {
	return s.contextID
}

// Token returns the token backing the session, or "" while logged out.
func (s *Session) Token() string {
	return s.token
}

// Login authenticates and transitions to LoggedIn with no active context.
// Logging in while already logged in first revokes the current token.
func (s *Session) Login(ctx context.Context, username, credential string) error {
	if s.state == StateLoggedIn {
		// Best effort: the replacement token would orphan this one anyway
		// if it belongs to the same user.
		if err := s.svc.Logout(ctx, s.token); err != nil {
			s.logger.Debug("stale token revocation failed", "error", err)
		}
		s.reset()
	}

	token, err := s.svc.Login(ctx, username, credential)
	if err != nil {
		return err
	}

	s.state = StateLoggedIn
	s.user = username
	s.token = token
	s.contextID = ""
	return nil
}

// SwitchContext activates a context for the logged-in user. If the context
// belongs to another user (or does not exist), the session is forced back to
// LoggedOut: access is never silently granted and the old context is never
// silently kept active. The caller must log in again before any further
// context access.
func (s *Session) SwitchContext(ctx context.Context, contextID string) (auth.Decision, error) {
	if s.state != StateLoggedIn {
		return auth.Denied(auth.ReasonNotAuthenticated), nil
	}

	decision, err := s.svc.Authorize(ctx, s.token, contextID)
	if err != nil {
		return auth.Decision{}, fmt.Errorf("authorizing context switch: %w", err)
	}

	if !decision.IsGranted() {
		s.logger.Warn("context switch denied, forcing logout",
			"username", s.user,
			"context_id", contextID,
			"reason", decision.Reason(),
		)
		if err := s.svc.Logout(ctx, s.token); err != nil {
			s.logger.Debug("token revocation on forced logout failed", "error", err)
		}
		s.reset()
		return decision, nil
	}

	s.contextID = contextID
	return decision, nil
}

// Require guards any interactive operation: it returns the cached identity
// or a NotAuthenticated denial while logged out or without an active context.
func (s *Session) Require() (auth.Identity, auth.Decision) {
	if s.state != StateLoggedIn {
		return auth.Identity{}, auth.Denied(auth.ReasonNotAuthenticated)
	}
	if s.contextID == "" {
		return auth.Identity{}, auth.Denied(auth.ReasonUnknownContext)
	}
	return auth.Identity{User: s.user, ContextID: s.contextID, Token: s.token}, auth.Granted(s.user)
}

// ClearActiveContext drops the active context without logging out, for when
// the context itself has been deleted. The session stays LoggedIn.
func (s *Session) ClearActiveContext() {
	s.contextID = ""
}

// Logout revokes the token and clears all cached state.
// Logging out while logged out returns ErrNotAuthenticated.
func (s *Session) Logout(ctx context.Context) error {
	if s.state != StateLoggedIn {
		return auth.ErrNotAuthenticated
	}

	err := s.svc.Logout(ctx, s.token)
	// Cached state is cleared regardless: a revocation failure must not
	// leave the adapter believing it still holds a valid grant.
	s.reset()
	return err
}

// reset returns the session to its zero, LoggedOut state.
func (s *Session) reset() {
	s.state = StateLoggedOut
	s.user = ""
	s.token = ""
	s.contextID = ""
}
