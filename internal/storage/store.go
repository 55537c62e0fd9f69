// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"billmate/internal/models"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a guarded write matched no rows: the record was
	// already in the state the guard excludes (code already consumed,
	// duplicate key, and so on).
	ErrConflict = errors.New("conflicting state")
)

// Store defines the interface for Billmate's persistence operations.
// This abstraction allows swapping storage backends (SQLite, the in-memory
// store used in tests, a hosted table API) without changing the service
// layer.
//
// Multi-step invariants are pushed down here as single guarded operations:
// ConsumeConnectionCode and AcceptConnection are atomic conditional updates,
// never separate read and write calls, so two callers racing on the same
// code or connection cannot both win.
type Store interface {
	// CreateUser persists a new user. Returns ErrConflict if the email is
	// already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUserProfile updates the mutable profile fields.
	UpdateUserProfile(ctx context.Context, id, name, avatarURL string) error

	// CreateConnectionCode persists a new invitation code. Returns
	// ErrConflict if the code string already exists, valid or not; the
	// caller re-rolls.
	CreateConnectionCode(ctx context.Context, code *models.ConnectionCode) error

	// GetConnectionCode retrieves a code record regardless of validity.
	// Returns ErrNotFound if the code was never issued.
	GetConnectionCode(ctx context.Context, code string) (*models.ConnectionCode, error)

	// ConsumeConnectionCode atomically marks a code used by userID iff it is
	// still unused and unexpired at now. Returns ErrConflict when the guard
	// fails; the caller reads the record back to classify why.
	ConsumeConnectionCode(ctx context.Context, code, userID string, now time.Time) error

	// CreateConnection persists a new shared connection.
	CreateConnection(ctx context.Context, conn *models.SharedConnection) error

	// GetConnection retrieves a connection by ID. Returns ErrNotFound if absent.
	GetConnection(ctx context.Context, id string) (*models.SharedConnection, error)

	// GetConnectionByUser retrieves the connection the user participates in,
	// on either side and in any state. Returns ErrNotFound when unpaired.
	GetConnectionByUser(ctx context.Context, userID string) (*models.SharedConnection, error)

	// AcceptConnection atomically sets the caller's acceptance flag and
	// recomputes the overall status in the same statement, leaving the
	// other side's flag untouched. Returns the updated connection, or
	// ErrNotFound if the connection does not exist or userID is not a
	// participant.
	AcceptConnection(ctx context.Context, connectionID, userID string, now time.Time) (*models.SharedConnection, error)

	// DeleteConnectionsByUser removes every connection the user is a side
	// of, unconditionally and regardless of state.
	DeleteConnectionsByUser(ctx context.Context, userID string) error

	// CreateBill persists a new bill. ID and CreatedAt are populated when
	// unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by ID. Returns ErrNotFound if absent.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBills returns the user's own bills plus, when connectionID is
	// non-empty, every bill linked to that connection.
	ListBills(ctx context.Context, userID, connectionID string) ([]*models.Bill, error)

	// UpdateBill rewrites the bill's mutable fields. Returns ErrNotFound if
	// absent.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// SetBillPaid sets one side's paid flag (the creator side when
	// creatorSide is true) and returns the bill as stored after the write.
	SetBillPaid(ctx context.Context, billID string, creatorSide, paid bool, now time.Time) (*models.Bill, error)

	// DeleteBill removes a bill. Activity entries referencing it survive.
	DeleteBill(ctx context.Context, billID string) error

	// UpsertBillSplit creates or replaces the split for a bill.
	UpsertBillSplit(ctx context.Context, split *models.BillSplit) error

	// GetBillSplit retrieves the split for a bill. Returns ErrNotFound if
	// none was ever set.
	GetBillSplit(ctx context.Context, billID string) (*models.BillSplit, error)

	// AppendActivity appends an audit entry. Entries are never mutated or
	// deleted.
	AppendActivity(ctx context.Context, activity *models.BillActivity) error

	// ListBillActivities returns entries for a bill, newest first. An empty
	// billID returns all entries.
	ListBillActivities(ctx context.Context, billID string) ([]*models.BillActivity, error)

	// GetNotificationPreference retrieves a user's reminder configuration.
	// Returns ErrNotFound when the user never saved one.
	GetNotificationPreference(ctx context.Context, userID string) (*models.NotificationPreference, error)

	// UpsertNotificationPreference creates or replaces the user's reminder
	// configuration.
	UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error

	// Close releases any resources held by the store.
	Close() error
}
