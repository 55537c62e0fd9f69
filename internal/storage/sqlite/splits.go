package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"billmate/internal/models"
	"billmate/internal/storage"
)

// UpsertBillSplit creates or replaces the split for a bill.
func (s *SQLiteStore) UpsertBillSplit(ctx context.Context, split *models.BillSplit) error {
	split.UpdatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_splits (bill_id, shared_connection_id, user_1_percentage, user_2_percentage, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(bill_id) DO UPDATE SET
		     user_1_percentage = excluded.user_1_percentage,
		     user_2_percentage = excluded.user_2_percentage,
		     updated_at = excluded.updated_at`,
		split.BillID, split.SharedConnectionID,
		split.User1Percentage.String(), split.User2Percentage.String(), split.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bill split: %w", err)
	}
	return nil
}

// GetBillSplit retrieves the split for a bill.
func (s *SQLiteStore) GetBillSplit(ctx context.Context, billID string) (*models.BillSplit, error) {
	split := &models.BillSplit{}
	var p1, p2 string
	err := s.db.QueryRowContext(ctx,
		`SELECT bill_id, shared_connection_id, user_1_percentage, user_2_percentage, updated_at
		 FROM bill_splits WHERE bill_id = ?`,
		billID,
	).Scan(&split.BillID, &split.SharedConnectionID, &p1, &p2, &split.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split for bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill split: %w", err)
	}
	if split.User1Percentage, err = decimal.NewFromString(p1); err != nil {
		return nil, fmt.Errorf("invalid stored percentage %q: %w", p1, err)
	}
	if split.User2Percentage, err = decimal.NewFromString(p2); err != nil {
		return nil, fmt.Errorf("invalid stored percentage %q: %w", p2, err)
	}
	return split, nil
}
