// ABOUTME: HTTP middleware implementing the stateless access mode
// ABOUTME: Every request must carry a bearer token and an explicit context id; no grant is cached

package auth

import (
	"net/http"
	"strings"
)

// ContextHeader names the header carrying the explicit session context id.
const ContextHeader = "X-Tame-Context"

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// BearerToken pulls the bearer token out of a request's Authorization
// header. The second return is an error message, empty on success.
func BearerToken(r *http.Request) (string, string) {
	return extractBearerToken(r.Header.Get("Authorization"))
}

// DenyStatus maps a denial reason to its HTTP status code.
func DenyStatus(reason DenyReason) int {
	return denyStatus(reason)
}

// denyStatus maps a denial reason to its HTTP status code.
func denyStatus(reason DenyReason) int {
	switch reason {
	case ReasonUnknownContext:
		return http.StatusNotFound
	case ReasonOwnerMismatch:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// Middleware creates an HTTP middleware that authorizes every request
// against the auth service. The check runs fresh on each call: the stateless
// mode never caches a prior grant. On success the Identity is added to the
// request context. Observers see every decision the middleware makes.
func Middleware(svc *Service, observers ...func(Decision)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeDenial(w, http.StatusUnauthorized, string(ReasonNotAuthenticated), errMsg)
				return
			}

			contextID := r.Header.Get(ContextHeader)
			if contextID == "" {
				writeDenial(w, http.StatusBadRequest, string(ReasonUnknownContext), "missing "+ContextHeader+" header")
				return
			}

			decision, err := svc.Authorize(r.Context(), token, contextID)
			if err != nil {
				writeDenial(w, http.StatusInternalServerError, "internal", "authorization error")
				return
			}
			for _, observe := range observers {
				observe(decision)
			}
			if !decision.IsGranted() {
				writeDenial(w, denyStatus(decision.Reason()), string(decision.Reason()), "access denied")
				return
			}

			id := &Identity{
				User:      decision.User(),
				ContextID: contextID,
				Token:     token,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// writeDenial emits a small JSON error body with a machine-readable reason.
func writeDenial(w http.ResponseWriter, status int, reason, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `","reason":"` + reason + `"}`))
}
