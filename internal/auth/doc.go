// Package auth provides authentication and authorization for tame.
//
// # Model
//
// A successful login issues an opaque, high-entropy token whose validity
// lives entirely in the durable token store. Every operation then presents
// (token, context id); the service resolves the token to its owner, resolves
// the context to its owner, and grants only when the two match. Logout
// deletes the token, which makes revocation immediate: the store is the sole
// authority other processes consult, so no cached grant can outlive it.
//
// # Decisions
//
// Authorization results are a typed Decision, never a boolean. Denials carry
// one of four reasons: invalid_token, unknown_context,
// context_owner_mismatch, not_authenticated. Call sites handle the specific
// reason rather than collapsing failures into "false".
//
// # Access modes
//
// The stateless HTTP middleware re-runs the full check on every request.
// The stateful interactive adapter lives in the session package and caches
// the last grant only within a single process.
package auth
