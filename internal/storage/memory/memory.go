// Package memory provides an in-memory implementation of storage.Store.
//
// It mirrors the app's earlier device-local key-value iteration: one map per
// logical collection, replaced wholesale on write. Used as the test double
// for the service layer; the sqlite store is the production backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"billmate/internal/models"
	"billmate/internal/pairing"
	"billmate/internal/storage"
)

var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with in-process maps.
type MemoryStore struct {
	mu sync.Mutex

	users       map[string]*models.User
	codes       map[string]*models.ConnectionCode
	connections map[string]*models.SharedConnection
	bills       map[string]*models.Bill
	splits      map[string]*models.BillSplit
	activities  []*models.BillActivity
	preferences map[string]*models.NotificationPreference
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		codes:       make(map[string]*models.ConnectionCode),
		connections: make(map[string]*models.SharedConnection),
		bills:       make(map[string]*models.Bill),
		splits:      make(map[string]*models.BillSplit),
		preferences: make(map[string]*models.NotificationPreference),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, storage.ErrConflict)
		}
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user email=%s: %w", email, storage.ErrNotFound)
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, id, name, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	u.Name = name
	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now().Unix()
	return nil
}

func (s *MemoryStore) CreateConnectionCode(_ context.Context, code *models.ConnectionCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.Code]; ok {
		return fmt.Errorf("code %s: %w", code.Code, storage.ErrConflict)
	}
	cp := *code
	s.codes[code.Code] = &cp
	return nil
}

func (s *MemoryStore) GetConnectionCode(_ context.Context, code string) (*models.ConnectionCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("code %s: %w", code, storage.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ConsumeConnectionCode(_ context.Context, code, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok || c.Used() || now.Unix() >= c.ExpiresAt {
		return fmt.Errorf("code %s not consumable: %w", code, storage.ErrConflict)
	}
	c.UsedBy = userID
	c.UsedAt = now.Unix()
	return nil
}

func (s *MemoryStore) CreateConnection(_ context.Context, conn *models.SharedConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *conn
	s.connections[conn.ID] = &cp
	return nil
}

func (s *MemoryStore) GetConnection(_ context.Context, id string) (*models.SharedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", id, storage.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) GetConnectionByUser(_ context.Context, userID string) (*models.SharedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.connections {
		if c.Involves(userID) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("connection for %s: %w", userID, storage.ErrNotFound)
}

func (s *MemoryStore) AcceptConnection(_ context.Context, connectionID, userID string, now time.Time) (*models.SharedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[connectionID]
	if !ok || !c.Involves(userID) {
		return nil, fmt.Errorf("connection %s for user %s: %w", connectionID, userID, storage.ErrNotFound)
	}
	if c.User1ID == userID {
		c.User1Accepted = true
	} else {
		c.User2Accepted = true
	}
	c.Status = pairing.ComputeStatus(c.User1Accepted, c.User2Accepted)
	c.UpdatedAt = now.Unix()
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) DeleteConnectionsByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.connections {
		if c.Involves(userID) {
			delete(s.connections, id)
		}
	}
	return nil
}

func (s *MemoryStore) CreateBill(_ context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.UpdatedAt == 0 {
		bill.UpdatedAt = bill.CreatedAt
	}
	cp := *bill
	s.bills[bill.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBill(_ context.Context, billID string) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[billID]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ListBills(_ context.Context, userID, connectionID string) ([]*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bills []*models.Bill
	for _, b := range s.bills {
		if b.CreatedBy == userID || (connectionID != "" && b.SharedConnectionID == connectionID) {
			cp := *b
			bills = append(bills, &cp)
		}
	}
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].DueDate != bills[j].DueDate {
			return bills[i].DueDate < bills[j].DueDate
		}
		return bills[i].CreatedAt < bills[j].CreatedAt
	})
	return bills, nil
}

func (s *MemoryStore) UpdateBill(_ context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[bill.ID]; !ok {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}
	bill.UpdatedAt = time.Now().Unix()
	cp := *bill
	s.bills[bill.ID] = &cp
	return nil
}

func (s *MemoryStore) SetBillPaid(_ context.Context, billID string, creatorSide, paid bool, now time.Time) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[billID]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if creatorSide {
		b.PaidByUser1 = paid
	} else {
		b.PaidByUser2 = paid
	}
	b.UpdatedAt = now.Unix()
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) DeleteBill(_ context.Context, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[billID]; !ok {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	delete(s.bills, billID)
	delete(s.splits, billID)
	return nil
}

func (s *MemoryStore) UpsertBillSplit(_ context.Context, split *models.BillSplit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	split.UpdatedAt = time.Now().Unix()
	cp := *split
	s.splits[split.BillID] = &cp
	return nil
}

func (s *MemoryStore) GetBillSplit(_ context.Context, billID string) (*models.BillSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.splits[billID]
	if !ok {
		return nil, fmt.Errorf("split for bill %s: %w", billID, storage.ErrNotFound)
	}
	cp := *sp
	return &cp, nil
}

func (s *MemoryStore) AppendActivity(_ context.Context, activity *models.BillActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}
	cp := *activity
	s.activities = append(s.activities, &cp)
	return nil
}

func (s *MemoryStore) ListBillActivities(_ context.Context, billID string) ([]*models.BillActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.BillActivity
	for _, a := range s.activities {
		if billID == "" || a.BillID == billID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *MemoryStore) GetNotificationPreference(_ context.Context, userID string) (*models.NotificationPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preferences[userID]
	if !ok {
		return nil, fmt.Errorf("preferences for %s: %w", userID, storage.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) UpsertNotificationPreference(_ context.Context, pref *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref.UpdatedAt = time.Now().Unix()
	cp := *pref
	s.preferences[pref.UserID] = &cp
	return nil
}
