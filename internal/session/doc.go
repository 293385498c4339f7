// ABOUTME: Package documentation for the interactive session adapter
// ABOUTME: Explains the state machine and single-actor ownership rules

// Package session implements the stateful access mode used by interactive
// clients such as the REPL.
//
// A Session is a small state machine over two states:
//
//	LoggedOut --Login--> LoggedIn(user, no context)
//	LoggedIn  --SwitchContext(granted)--> LoggedIn(user, context)
//	LoggedIn  --SwitchContext(denied)---> LoggedOut (token revoked)
//	LoggedIn  --Logout--> LoggedOut
//
// While LoggedIn the session caches the username, the active context, and
// the backing token; Require hands that cached identity to operations
// without re-resolving the token. The cache is trusted precisely because
// every transition into it went through the auth service, and because a
// denied context switch tears the whole session down rather than keeping
// stale state around.
//
// A Session belongs to exactly one actor. It carries no locking and must
// not be shared between goroutines or processes; concurrent access goes
// through the stateless API instead.
package session
