// ABOUTME: Token store methods backing the auth service
// ABOUTME: Issues tokens with atomic single-active-session replacement and revokes on logout

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IssueToken persists a new token for tok.Username, replacing any token the
// user currently holds. The delete and insert run in one transaction so there
// is no window where two tokens are simultaneously valid for one user, and no
// window where the user holds none.
func (s *SQLiteStore) IssueToken(ctx context.Context, tok *AuthToken) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning token transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE username = ?`, tok.Username,
	); err != nil {
		return fmt.Errorf("clearing prior token: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO auth_tokens (token, username, issued_at) VALUES (?, ?, ?)`,
		tok.Token,
		tok.Username,
		tok.IssuedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing token transaction: %w", err)
	}

	s.logger.Debug("issued token", "username", tok.Username)
	return nil
}

// ResolveToken looks up the owner of a token value.
// Returns ErrNotFound if the token was never issued or has been revoked.
func (s *SQLiteStore) ResolveToken(ctx context.Context, token string) (*AuthToken, error) {
	query := `
		SELECT token, username, issued_at
		FROM auth_tokens
		WHERE token = ?
	`

	var (
		tok      AuthToken
		issuedAt string
	)
	err := s.db.QueryRowContext(ctx, query, token).Scan(&tok.Token, &tok.Username, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}

	tok.IssuedAt, _ = time.Parse(time.RFC3339, issuedAt)
	return &tok, nil
}

// RevokeToken deletes a token mapping. Revoking a token that is already gone
// returns ErrNotFound, never an internal error.
func (s *SQLiteStore) RevokeToken(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("revoked token")
	return nil
}
