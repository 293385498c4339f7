// Package store provides persistent storage for tame using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - UserStore: accounts with bcrypt password hashes
//   - TokenStore: the single source of truth for token validity
//   - ContextStore: session contexts with immutable ownership
//   - MessageStore: append-only per-context message history
//   - AuditStore: append-only log of auth-relevant actions
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Durability
//
// The durable store is the sole authority consulted by every request; there
// is no write-through cache that could desync from it. All mutating
// operations are atomic: multi-row changes (token replacement, context
// deletion) run inside a transaction, and SQLite serializes writers, so a
// partially applied write is not observable.
package store
