package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"billmate/internal/models"
)

// activityDetails is the JSON payload stored in the details column,
// mirroring the hosted table layout (action metadata as a json blob).
type activityDetails struct {
	Description string `json:"description"`
	UserName    string `json:"userName,omitempty"`
}

// AppendActivity appends an audit entry. There is no update or delete path
// for activities anywhere in this package.
func (s *SQLiteStore) AppendActivity(ctx context.Context, activity *models.BillActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	details, err := json.Marshal(activityDetails{
		Description: activity.Description,
		UserName:    activity.UserName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bill_activities (id, bill_id, user_id, action, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		activity.ID, activity.BillID, activity.UserID, string(activity.Type), string(details), activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListBillActivities returns entries for a bill, newest first. An empty
// billID returns all entries.
func (s *SQLiteStore) ListBillActivities(ctx context.Context, billID string) ([]*models.BillActivity, error) {
	query := `SELECT id, bill_id, user_id, action, details, created_at
	          FROM bill_activities ORDER BY created_at DESC, id`
	args := []any{}
	if billID != "" {
		query = `SELECT id, bill_id, user_id, action, details, created_at
		         FROM bill_activities WHERE bill_id = ? ORDER BY created_at DESC, id`
		args = append(args, billID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.BillActivity
	for rows.Next() {
		a := &models.BillActivity{}
		var action, details string
		if err := rows.Scan(&a.ID, &a.BillID, &a.UserID, &action, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = models.ActivityType(action)

		var d activityDetails
		if err := json.Unmarshal([]byte(details), &d); err != nil {
			return nil, fmt.Errorf("invalid stored activity details: %w", err)
		}
		a.Description = d.Description
		a.UserName = d.UserName

		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}
