// Package billing holds the pure derivation helpers for bills: display
// status, formatting, and per-side payment attribution. No state, no I/O.
package billing

import (
	"fmt"
	"time"

	"billmate/internal/models"
)

// Status is a bill's derived display status.
type Status string

const (
	StatusDue      Status = "due"
	StatusUpcoming Status = "upcoming"
	StatusPaid     Status = "paid"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// BillStatus derives the display status of a bill at the given instant.
//
// A bill is paid only when both paid-flags are true, regardless of due date.
// Otherwise it is due when its due date (date only) is today or earlier in
// now's location, and upcoming after that. "Due today" counts as due.
func BillStatus(bill *models.Bill, now time.Time) Status {
	if bill.PaidByUser1 && bill.PaidByUser2 {
		return StatusPaid
	}

	due, err := time.ParseInLocation(DateLayout, bill.DueDate, now.Location())
	if err != nil {
		// A malformed due date never hides a bill; surface it as due.
		return StatusDue
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !due.After(today) {
		return StatusDue
	}
	return StatusUpcoming
}

// PaidBy reports whether the given user's side of the bill is marked paid.
// The creator owns the user-1 flag, the counterpart the user-2 flag.
func PaidBy(bill *models.Bill, userID string) bool {
	if bill.CreatedBy == userID {
		return bill.PaidByUser1
	}
	return bill.PaidByUser2
}

// StatusColor returns the UI color hex for a status.
func StatusColor(status Status) string {
	switch status {
	case StatusDue:
		return "#DC3545"
	case StatusUpcoming:
		return "#FFC107"
	case StatusPaid:
		return "#28A745"
	default:
		return "#6C757D"
	}
}

// DaysUntilDue returns the number of whole days from now (date only) until
// the due date. Negative for overdue bills, zero for bills due today.
func DaysUntilDue(bill *models.Bill, now time.Time) (int, error) {
	due, err := time.ParseInLocation(DateLayout, bill.DueDate, now.Location())
	if err != nil {
		return 0, fmt.Errorf("invalid due date %q: %w", bill.DueDate, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(due.Sub(today).Hours() / 24), nil
}
