package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"billmate/internal/models"
	"billmate/internal/storage"
)

const connectionColumns = `id, user_id_1, user_id_2, user_1_accepted, user_2_accepted, status, created_at, updated_at`

// CreateConnection persists a new shared connection.
func (s *SQLiteStore) CreateConnection(ctx context.Context, conn *models.SharedConnection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shared_connections (`+connectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conn.ID, conn.User1ID, conn.User2ID, conn.User1Accepted, conn.User2Accepted,
		string(conn.Status), conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

// GetConnection retrieves a connection by ID.
func (s *SQLiteStore) GetConnection(ctx context.Context, id string) (*models.SharedConnection, error) {
	return s.scanConnection(s.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM shared_connections WHERE id = ?`, id), id)
}

// GetConnectionByUser retrieves the connection the user participates in, on
// either side and in any state.
func (s *SQLiteStore) GetConnectionByUser(ctx context.Context, userID string) (*models.SharedConnection, error) {
	return s.scanConnection(s.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM shared_connections
		 WHERE user_id_1 = ? OR user_id_2 = ?`, userID, userID), userID)
}

func (s *SQLiteStore) scanConnection(row *sql.Row, key string) (*models.SharedConnection, error) {
	conn := &models.SharedConnection{}
	var status string
	err := row.Scan(&conn.ID, &conn.User1ID, &conn.User2ID,
		&conn.User1Accepted, &conn.User2Accepted, &status, &conn.CreatedAt, &conn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("connection for %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	conn.Status = models.ConnectionStatus(status)
	return conn, nil
}

// AcceptConnection sets the caller's acceptance flag and recomputes the
// overall status in a single statement, so concurrent acceptances from both
// sides cannot clobber each other's flag.
func (s *SQLiteStore) AcceptConnection(ctx context.Context, connectionID, userID string, now time.Time) (*models.SharedConnection, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shared_connections SET
		     user_1_accepted = user_1_accepted OR (user_id_1 = ?),
		     user_2_accepted = user_2_accepted OR (user_id_2 = ?),
		     status = CASE
		         WHEN (user_1_accepted OR user_id_1 = ?) AND (user_2_accepted OR user_id_2 = ?)
		         THEN 'active' ELSE 'pending'
		     END,
		     updated_at = ?
		 WHERE id = ? AND (user_id_1 = ? OR user_id_2 = ?)`,
		userID, userID, userID, userID, now.Unix(), connectionID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("connection %s for user %s: %w", connectionID, userID, storage.ErrNotFound)
	}
	return s.GetConnection(ctx, connectionID)
}

// DeleteConnectionsByUser removes every connection the user is a side of.
func (s *SQLiteStore) DeleteConnectionsByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM shared_connections WHERE user_id_1 = ? OR user_id_2 = ?",
		userID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete connections: %w", err)
	}
	return nil
}
