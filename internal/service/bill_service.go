package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"billmate/internal/billing"
	"billmate/internal/models"
	"billmate/internal/pairing"
	"billmate/internal/storage"
)

// BillService handles bill CRUD, paid-flag toggling, splits, comments and
// the activity log.
type BillService struct {
	store storage.Store
}

// NewBillService creates a BillService.
func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// BillView is a bill plus its derived presentation fields.
type BillView struct {
	models.Bill
	Status   billing.Status `json:"status"`
	IsShared bool           `json:"isShared"`
}

// BillInput carries the user-editable bill fields.
type BillInput struct {
	Name      string           `json:"name"`
	Amount    decimal.Decimal  `json:"amount"`
	DueDate   string           `json:"dueDate"`
	Frequency models.Frequency `json:"frequency"`
	Notes     string           `json:"notes"`
}

func (in *BillInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	if _, err := time.Parse(billing.DateLayout, in.DueDate); err != nil {
		return fmt.Errorf("%w: due date must be formatted %s", ErrValidation, billing.DateLayout)
	}
	if !in.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, in.Frequency)
	}
	return nil
}

// List returns the user's bills: their own, plus the partner's shared bills
// when an active connection exists. IsShared is true only under an active
// connection; a pending one grants no shared visibility.
func (s *BillService) List(ctx context.Context, userID string) ([]*BillView, error) {
	conn := s.activeConnection(ctx, userID)
	connID := ""
	if conn != nil {
		connID = conn.ID
	}

	bills, err := s.store.ListBills(ctx, userID, connID)
	if err != nil {
		slog.Error("List bills failed", "user_id", userID, "error", err)
		return nil, err
	}

	now := time.Now()
	views := make([]*BillView, len(bills))
	for i, bill := range bills {
		views[i] = &BillView{
			Bill:     *bill,
			Status:   billing.BillStatus(bill, now),
			IsShared: conn != nil && bill.SharedConnectionID == conn.ID,
		}
	}
	return views, nil
}

// Get returns one bill the user can see.
func (s *BillService) Get(ctx context.Context, userID, billID string) (*BillView, error) {
	bill, err := s.authorizedBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	return &BillView{
		Bill:     *bill,
		Status:   billing.BillStatus(bill, time.Now()),
		IsShared: bill.SharedConnectionID != "" && s.activeConnection(ctx, userID) != nil,
	}, nil
}

// Create persists a new bill and appends its `created` activity. When the
// creator has an active connection the bill is linked to it and becomes
// visible to the partner.
func (s *BillService) Create(ctx context.Context, userID string, input BillInput) (*models.Bill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	bill := &models.Bill{
		Name:      input.Name,
		Amount:    input.Amount,
		DueDate:   input.DueDate,
		Frequency: input.Frequency,
		Notes:     input.Notes,
		CreatedBy: userID,
	}
	if conn := s.activeConnection(ctx, userID); conn != nil {
		bill.SharedConnectionID = conn.ID
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("Create bill failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.logActivity(ctx, bill.ID, userID, models.ActivityCreated,
		fmt.Sprintf("Created %q", bill.Name))
	slog.Info("Bill created", "bill_id", bill.ID, "user_id", userID, "shared", bill.SharedConnectionID != "")
	return bill, nil
}

// Update rewrites the user-editable fields. Plain field edits append no
// activity; paid-flag changes go through SetPaid.
func (s *BillService) Update(ctx context.Context, userID, billID string, input BillInput) (*models.Bill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	bill, err := s.authorizedBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	bill.Name = input.Name
	bill.Amount = input.Amount
	bill.DueDate = input.DueDate
	bill.Frequency = input.Frequency
	bill.Notes = input.Notes

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("Update bill failed", "bill_id", billID, "error", err)
		return nil, err
	}
	slog.Info("Bill updated", "bill_id", billID, "user_id", userID)
	return bill, nil
}

// SetPaid sets the caller's side of the bill's paid flags and appends one
// `paid` or `unpaid` activity. The classification follows the conjunction of
// both flags after the write, not the caller's own flag: clearing your flag
// while the partner's stays set still logs `unpaid`, because the bill as a
// whole stopped being paid.
func (s *BillService) SetPaid(ctx context.Context, userID, billID string, paid bool) (*models.Bill, error) {
	bill, err := s.authorizedBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.SetBillPaid(ctx, billID, bill.CreatedBy == userID, paid, time.Now())
	if err != nil {
		slog.Error("SetPaid failed", "bill_id", billID, "error", err)
		return nil, err
	}

	if updated.PaidByUser1 && updated.PaidByUser2 {
		s.logActivity(ctx, billID, userID, models.ActivityPaid,
			fmt.Sprintf("Marked %q as paid", updated.Name))
	} else {
		s.logActivity(ctx, billID, userID, models.ActivityUnpaid,
			fmt.Sprintf("Marked %q as unpaid", updated.Name))
	}

	slog.Info("Paid flag set", "bill_id", billID, "user_id", userID, "paid", paid)
	return updated, nil
}

// Delete removes a bill (creator only) and appends a `deleted` activity with
// the bill's last-known name. The audit trail outlives the bill.
func (s *BillService) Delete(ctx context.Context, userID, billID string) error {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if bill.CreatedBy != userID {
		return fmt.Errorf("only the creator can delete a bill: %w", ErrForbidden)
	}

	if err := s.store.DeleteBill(ctx, billID); err != nil {
		slog.Error("Delete bill failed", "bill_id", billID, "error", err)
		return err
	}

	s.logActivity(ctx, billID, userID, models.ActivityDeleted,
		fmt.Sprintf("Deleted %q", bill.Name))
	slog.Info("Bill deleted", "bill_id", billID, "user_id", userID)
	return nil
}

// Comment appends a `commented` activity carrying the comment text.
func (s *BillService) Comment(ctx context.Context, userID, billID, text string) (*models.BillActivity, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	if _, err := s.authorizedBill(ctx, userID, billID); err != nil {
		return nil, err
	}

	activity := &models.BillActivity{
		BillID:      billID,
		UserID:      userID,
		UserName:    s.userName(ctx, userID),
		Type:        models.ActivityCommented,
		Description: text,
	}
	if err := s.store.AppendActivity(ctx, activity); err != nil {
		slog.Error("Comment failed", "bill_id", billID, "error", err)
		return nil, err
	}
	return activity, nil
}

// Activities returns a bill's audit trail, newest first.
func (s *BillService) Activities(ctx context.Context, userID, billID string) ([]*models.BillActivity, error) {
	if _, err := s.authorizedBill(ctx, userID, billID); err != nil {
		return nil, err
	}
	return s.store.ListBillActivities(ctx, billID)
}

// GetSplit returns the bill's split, defaulting to 50/50 when none was set.
func (s *BillService) GetSplit(ctx context.Context, userID, billID string) (*models.BillSplit, error) {
	bill, err := s.authorizedBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	split, err := s.store.GetBillSplit(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		half := decimal.NewFromInt(50)
		return &models.BillSplit{
			BillID:             billID,
			SharedConnectionID: bill.SharedConnectionID,
			User1Percentage:    half,
			User2Percentage:    half,
		}, nil
	}
	return split, err
}

// SetSplit stores how a shared bill divides between the two sides.
func (s *BillService) SetSplit(ctx context.Context, userID, billID string, user1Pct, user2Pct decimal.Decimal) (*models.BillSplit, error) {
	if !user1Pct.Add(user2Pct).Equal(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: split percentages must sum to 100", ErrValidation)
	}
	if user1Pct.IsNegative() || user2Pct.IsNegative() {
		return nil, fmt.Errorf("%w: split percentages cannot be negative", ErrValidation)
	}

	bill, err := s.authorizedBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	if bill.SharedConnectionID == "" {
		return nil, fmt.Errorf("%w: cannot split an unshared bill", ErrValidation)
	}

	split := &models.BillSplit{
		BillID:             billID,
		SharedConnectionID: bill.SharedConnectionID,
		User1Percentage:    user1Pct,
		User2Percentage:    user2Pct,
	}
	if err := s.store.UpsertBillSplit(ctx, split); err != nil {
		slog.Error("SetSplit failed", "bill_id", billID, "error", err)
		return nil, err
	}
	return split, nil
}

// activeConnection returns the user's connection when it grants shared
// visibility, nil otherwise. Lookup failures degrade to "unpaired" on
// purpose: reads fall back to the personal view rather than erroring the
// whole screen.
func (s *BillService) activeConnection(ctx context.Context, userID string) *models.SharedConnection {
	conn, err := s.store.GetConnectionByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Connection lookup failed", "user_id", userID, "error", err)
		}
		return nil
	}
	if !pairing.SharedVisible(conn) {
		return nil
	}
	return conn
}

// authorizedBill loads a bill and checks the caller can see it: creators
// always, partners only through an active connection.
func (s *BillService) authorizedBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatedBy == userID {
		return bill, nil
	}
	if bill.SharedConnectionID != "" {
		conn := s.activeConnection(ctx, userID)
		if conn != nil && conn.ID == bill.SharedConnectionID {
			return bill, nil
		}
	}
	return nil, fmt.Errorf("bill %s: %w", billID, ErrForbidden)
}

// logActivity appends an audit entry for an already-committed write. A
// failure here is logged and swallowed: the primary mutation stands, the
// audit trail just has a hole.
func (s *BillService) logActivity(ctx context.Context, billID, userID string, typ models.ActivityType, description string) {
	activity := &models.BillActivity{
		BillID:      billID,
		UserID:      userID,
		UserName:    s.userName(ctx, userID),
		Type:        typ,
		Description: description,
	}
	if err := s.store.AppendActivity(ctx, activity); err != nil {
		slog.Error("Failed to append activity", "bill_id", billID, "type", typ, "error", err)
	}
}

func (s *BillService) userName(ctx context.Context, userID string) string {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Name
}
