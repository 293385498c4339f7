// ABOUTME: Session context registry methods for the SQLite store
// ABOUTME: Context ownership is assigned at creation and never updated

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateContext registers a new session context with its owner.
// Returns ErrContextExists if the context ID is already taken.
func (s *SQLiteStore) CreateContext(ctx context.Context, sc *SessionContext) error {
	query := `
		INSERT INTO contexts (id, owner, title, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sc.ID,
		sc.Owner,
		nullString(sc.Title),
		sc.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrContextExists
		}
		return fmt.Errorf("inserting context: %w", err)
	}

	s.logger.Debug("created context", "id", sc.ID, "owner", sc.Owner)
	return nil
}

// GetContext retrieves a session context by ID.
func (s *SQLiteStore) GetContext(ctx context.Context, id string) (*SessionContext, error) {
	query := `
		SELECT id, owner, title, created_at
		FROM contexts
		WHERE id = ?
	`

	var (
		sc        SessionContext
		title     sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&sc.ID, &sc.Owner, &title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying context: %w", err)
	}

	sc.Title = title.String
	sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sc, nil
}

// ContextOwner returns the owning user of a context, or ErrNotFound if the
// context does not exist. Used by every authorization check.
func (s *SQLiteStore) ContextOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner FROM contexts WHERE id = ?`, id,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying context owner: %w", err)
	}
	return owner, nil
}

// ListContexts returns contexts ordered by creation time.
// If owner is non-empty, only that user's contexts are returned.
func (s *SQLiteStore) ListContexts(ctx context.Context, owner string) ([]*SessionContext, error) {
	query := `
		SELECT id, owner, title, created_at
		FROM contexts
		ORDER BY created_at ASC
	`
	args := []any{}
	if owner != "" {
		query = `
			SELECT id, owner, title, created_at
			FROM contexts
			WHERE owner = ?
			ORDER BY created_at ASC
		`
		args = append(args, owner)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contexts: %w", err)
	}
	defer rows.Close()

	var contexts []*SessionContext
	for rows.Next() {
		var (
			sc        SessionContext
			title     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&sc.ID, &sc.Owner, &title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning context: %w", err)
		}
		sc.Title = title.String
		sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		contexts = append(contexts, &sc)
	}
	return contexts, rows.Err()
}

// DeleteContext removes a context and its messages in one transaction.
func (s *SQLiteStore) DeleteContext(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE context_id = ?`, id); err != nil {
		return fmt.Errorf("deleting context messages: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting context: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete transaction: %w", err)
	}

	s.logger.Debug("deleted context", "id", id)
	return nil
}
