// ABOUTME: Audit log entity and store methods for tracking auth-relevant actions
// ABOUTME: Records who logged in, logged out, and touched which context

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditCreateUser    AuditAction = "create_user"
	AuditLogin         AuditAction = "login"
	AuditLogout        AuditAction = "logout"
	AuditRevokeToken   AuditAction = "revoke_token"
	AuditCreateContext AuditAction = "create_context"
	AuditDeleteContext AuditAction = "delete_context"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string         // UUID v4, generated on append if empty
	Actor      string         // username performing the action
	Action     AuditAction    // what action was performed
	TargetType string         // "user", "token", "context"
	TargetID   string         // ID of the affected resource
	Timestamp  time.Time      // when it happened
	Detail     map[string]any // additional context
}

// AuditStore defines the interface for audit log persistence.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, entry *AuditEntry) error
	ListAuditLog(ctx context.Context, actor string, limit int) ([]*AuditEntry, error)
}

var _ AuditStore = (*SQLiteStore)(nil)

// AppendAuditLog records an entry. ID and Timestamp are filled in if empty.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, entry *AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var detailJSON []byte
	if entry.Detail != nil {
		var err error
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
	}

	query := `
		INSERT INTO audit_log (audit_id, actor, action, target_type, target_id, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Actor,
		string(entry.Action),
		entry.TargetType,
		entry.TargetID,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		nullString(string(detailJSON)),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// ListAuditLog returns the most recent entries, newest first.
// If actor is non-empty, only that actor's entries are returned.
func (s *SQLiteStore) ListAuditLog(ctx context.Context, actor string, limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT audit_id, actor, action, target_type, target_id, ts, detail_json
		FROM audit_log
	`
	args := []any{}
	if actor != "" {
		query += ` WHERE actor = ?`
		args = append(args, actor)
	}
	query += ` ORDER BY ts DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var (
			entry      AuditEntry
			action     string
			ts         string
			detailJSON sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &action, &entry.TargetType, &entry.TargetID, &ts, &detailJSON); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.Action = AuditAction(action)
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if detailJSON.Valid && detailJSON.String != "" {
			_ = json.Unmarshal([]byte(detailJSON.String), &entry.Detail)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
