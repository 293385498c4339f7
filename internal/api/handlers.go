// ABOUTME: HTTP handlers for login, logout, contexts, and message access
// ABOUTME: Token-bearing routes resolve the caller fresh on every request

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tamelab/tame/internal/auth"
	"github.com/tamelab/tame/internal/ids"
	"github.com/tamelab/tame/internal/obs"
	"github.com/tamelab/tame/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		obs.RecordLogin(false)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeReason(w, http.StatusUnauthorized, "invalid credentials", "invalid_credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	obs.RecordLogin(true)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: req.Username})
}

// requireToken resolves the bearer token to a username, writing the denial
// itself when the caller is not authenticated.
func (s *Server) requireToken(w http.ResponseWriter, r *http.Request) (username, token string, ok bool) {
	token, errMsg := auth.BearerToken(r)
	if errMsg != "" {
		writeReason(w, http.StatusUnauthorized, errMsg, string(auth.ReasonNotAuthenticated))
		return "", "", false
	}

	username, err := s.svc.Identify(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			writeReason(w, http.StatusUnauthorized, "invalid or revoked token", string(auth.ReasonInvalidToken))
			return "", "", false
		}
		s.logger.Error("token resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", "", false
	}
	return username, token, true
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, token, ok := s.requireToken(w, r)
	if !ok {
		return
	}

	if err := s.svc.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			writeReason(w, http.StatusUnauthorized, "not authenticated", string(auth.ReasonNotAuthenticated))
			return
		}
		s.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	username, _, ok := s.requireToken(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

type contextResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	username, _, ok := s.requireToken(w, r)
	if !ok {
		return
	}

	contexts, err := s.store.ListContexts(r.Context(), username)
	if err != nil {
		s.logger.Error("listing contexts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]contextResponse, 0, len(contexts))
	for _, sc := range contexts {
		out = append(out, contextResponse{
			ID:        sc.ID,
			Owner:     sc.Owner,
			Title:     sc.Title,
			CreatedAt: sc.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contexts": out})
}

type createContextRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateContext(w http.ResponseWriter, r *http.Request) {
	username, _, ok := s.requireToken(w, r)
	if !ok {
		return
	}

	var req createContextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc := &store.SessionContext{
		ID:        ids.NewContextID(time.Now(), req.Title),
		Owner:     username,
		Title:     req.Title,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateContext(r.Context(), sc); err != nil {
		s.logger.Error("creating context failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.appendAudit(r, username, store.AuditCreateContext, "context", sc.ID)
	writeJSON(w, http.StatusCreated, contextResponse{
		ID:        sc.ID,
		Owner:     sc.Owner,
		Title:     sc.Title,
		CreatedAt: sc.CreatedAt,
	})
}

func (s *Server) handleDeleteContext(w http.ResponseWriter, r *http.Request) {
	username, _, ok := s.requireToken(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	owner, err := s.store.ContextOwner(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeReason(w, http.StatusNotFound, "context not found", string(auth.ReasonUnknownContext))
			return
		}
		s.logger.Error("resolving context owner failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if owner != username {
		writeReason(w, http.StatusForbidden, "context belongs to another user", string(auth.ReasonOwnerMismatch))
		return
	}

	if err := s.store.DeleteContext(r.Context(), id); err != nil {
		s.logger.Error("deleting context failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.appendAudit(r, username, store.AuditDeleteContext, "context", id)
	w.WriteHeader(http.StatusNoContent)
}

type appendMessageRequest struct {
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	ContextID string    `json:"context_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	var req appendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	sender := req.Sender
	if sender == "" {
		sender = identity.User
	}

	msg := &store.Message{
		ID:        ids.NewMessageID(),
		ContextID: identity.ContextID,
		Sender:    sender,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(r.Context(), msg); err != nil {
		s.logger.Error("appending message failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		ID:        msg.ID,
		ContextID: msg.ContextID,
		Sender:    msg.Sender,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	messages, err := s.store.ListMessages(r.Context(), identity.ContextID, limit)
	if err != nil {
		s.logger.Error("listing messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse{
			ID:        m.ID,
			ContextID: m.ContextID,
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// appendAudit records a context mutation. Best effort, mirrors the auth
// service's treatment of audit failures.
func (s *Server) appendAudit(r *http.Request, actor string, action store.AuditAction, targetType, targetID string) {
	if err := s.store.AppendAuditLog(r.Context(), &store.AuditEntry{
		Actor:      actor,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}); err != nil {
		s.logger.Error("audit append failed", "action", action, "error", err)
	}
}
