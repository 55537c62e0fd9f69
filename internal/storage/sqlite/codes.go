package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billmate/internal/models"
	"billmate/internal/storage"
)

// CreateConnectionCode persists a new invitation code. A primary-key
// collision maps to ErrConflict so the caller can re-roll.
func (s *SQLiteStore) CreateConnectionCode(ctx context.Context, code *models.ConnectionCode) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connection_codes (code, created_by, created_at, expires_at, used_by, used_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		code.Code, code.CreatedBy, code.CreatedAt, code.ExpiresAt, nullable(code.UsedBy), nullableInt(code.UsedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("code %s: %w", code.Code, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert connection code: %w", err)
	}
	return nil
}

// GetConnectionCode retrieves a code record regardless of validity.
func (s *SQLiteStore) GetConnectionCode(ctx context.Context, code string) (*models.ConnectionCode, error) {
	rec := &models.ConnectionCode{}
	var usedBy sql.NullString
	var usedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT code, created_by, created_at, expires_at, used_by, used_at
		 FROM connection_codes WHERE code = ?`,
		code,
	).Scan(&rec.Code, &rec.CreatedBy, &rec.CreatedAt, &rec.ExpiresAt, &usedBy, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection code: %w", err)
	}
	rec.UsedBy = usedBy.String
	rec.UsedAt = usedAt.Int64
	return rec, nil
}

// ConsumeConnectionCode marks a code used in one guarded statement: the
// update only lands while the code is unused and unexpired, so two racing
// redeemers cannot both consume it.
func (s *SQLiteStore) ConsumeConnectionCode(ctx context.Context, code, userID string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE connection_codes SET used_by = ?, used_at = ?
		 WHERE code = ? AND used_by IS NULL AND expires_at > ?`,
		userID, now.Unix(), code, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to consume connection code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("code %s not consumable: %w", code, storage.ErrConflict)
	}
	return nil
}
