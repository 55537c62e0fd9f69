package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billmate/internal/models"
	"billmate/internal/storage"
)

const billColumns = `id, created_by, shared_connection_id, name, amount, due_date, frequency,
	notes, paid_by_user_1, paid_by_user_2, created_at, updated_at`

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.UpdatedAt == 0 {
		bill.UpdatedAt = bill.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.CreatedBy, nullable(bill.SharedConnectionID), bill.Name,
		bill.Amount.String(), bill.DueDate, string(bill.Frequency), bill.Notes,
		bill.PaidByUser1, bill.PaidByUser2, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, billID)
	bill, err := scanBill(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBills returns the user's own bills plus, when connectionID is
// non-empty, every bill linked to that connection. Ordered by due date so
// the client renders the soonest obligations first.
func (s *SQLiteStore) ListBills(ctx context.Context, userID, connectionID string) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE created_by = ?`
	args := []any{userID}
	if connectionID != "" {
		query = `SELECT ` + billColumns + ` FROM bills WHERE created_by = ? OR shared_connection_id = ?`
		args = append(args, connectionID)
	}
	query += ` ORDER BY due_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill rewrites the bill's mutable fields.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, due_date = ?, frequency = ?, notes = ?,
		     shared_connection_id = ?, paid_by_user_1 = ?, paid_by_user_2 = ?, updated_at = ?
		 WHERE id = ?`,
		bill.Name, bill.Amount.String(), bill.DueDate, string(bill.Frequency), bill.Notes,
		nullable(bill.SharedConnectionID), bill.PaidByUser1, bill.PaidByUser2, bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}
	return nil
}

// SetBillPaid flips one side's paid flag and reads the bill back in the same
// transaction, so the caller classifies the paid/unpaid activity from the
// stored state rather than a stale in-memory copy.
func (s *SQLiteStore) SetBillPaid(ctx context.Context, billID string, creatorSide, paid bool, now time.Time) (*models.Bill, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	column := "paid_by_user_2"
	if creatorSide {
		column = "paid_by_user_1"
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET "+column+" = ?, updated_at = ? WHERE id = ?",
		paid, now.Unix(), billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set paid flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, billID)
	bill, err := scanBill(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return bill, nil
}

// DeleteBill removes a bill. Its split goes with it; activities stay.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_splits WHERE bill_id = ?", billID); err != nil {
		return fmt.Errorf("failed to delete bill split: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scanBill reads one bill row via the given scan function.
func scanBill(scan func(...any) error) (*models.Bill, error) {
	bill := &models.Bill{}
	var connID sql.NullString
	var amount, frequency string
	err := scan(&bill.ID, &bill.CreatedBy, &connID, &bill.Name, &amount, &bill.DueDate,
		&frequency, &bill.Notes, &bill.PaidByUser1, &bill.PaidByUser2, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return nil, err
	}
	bill.SharedConnectionID = connID.String
	bill.Frequency = models.Frequency(frequency)
	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	return bill, nil
}
