// ABOUTME: Authorization decision types returned by every access check
// ABOUTME: A typed Granted/Denied result forces callers to handle the denial reason

package auth

// DenyReason identifies why an authorization check failed.
type DenyReason string

const (
	// ReasonInvalidToken means the token was never issued or has been revoked.
	ReasonInvalidToken DenyReason = "invalid_token"
	// ReasonUnknownContext means the context identifier does not exist.
	ReasonUnknownContext DenyReason = "unknown_context"
	// ReasonOwnerMismatch means the context belongs to a different user.
	ReasonOwnerMismatch DenyReason = "context_owner_mismatch"
	// ReasonNotAuthenticated means no credentials were presented at all.
	ReasonNotAuthenticated DenyReason = "not_authenticated"
)

// Decision is the outcome of evaluating (token, context id).
// It is computed per request and never persisted or cached across calls.
type Decision struct {
	granted bool
	user    string
	reason  DenyReason
}

// Granted returns an allow decision bound to the resolved user.
func Granted(user string) Decision {
	return Decision{granted: true, user: user}
}

// Denied returns a deny decision carrying the specific reason.
func Denied(reason DenyReason) Decision {
	return Decision{reason: reason}
}

// IsGranted reports whether access was allowed.
func (d Decision) IsGranted() bool {
	return d.granted
}

// User returns the authenticated user for a granted decision, or "" if denied.
func (d Decision) User() string {
	return d.user
}

// Reason returns the denial reason, or "" for a granted decision.
func (d Decision) Reason() DenyReason {
	return d.reason
}

// String renders the decision for logs.
func (d Decision) String() string {
	if d.granted {
		return "granted(" + d.user + ")"
	}
	return "denied(" + string(d.reason) + ")"
}
