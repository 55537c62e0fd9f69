package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"billmate/internal/models"
	"billmate/internal/pairing"
	"billmate/internal/storage"
)

// maxCodeAttempts bounds re-rolls when a freshly generated code collides
// with an existing one. 36^6 codes make more than one retry vanishingly
// rare.
const maxCodeAttempts = 5

// ConnectionService handles the pairing lifecycle: issuing codes, redeeming
// them into a pending connection, the two-sided acceptance, and disconnect.
type ConnectionService struct {
	store storage.Store
}

// NewConnectionService creates a ConnectionService.
func NewConnectionService(store storage.Store) *ConnectionService {
	return &ConnectionService{store: store}
}

// ConnectionView is a user's connection together with the counterpart's
// profile and the derived visibility flag.
type ConnectionView struct {
	Connection *models.SharedConnection `json:"connection"`
	Partner    *models.User             `json:"partner,omitempty"`
	Active     bool                     `json:"active"`
}

// GenerateCode issues a fresh invitation code for the user, re-rolling on
// the (unlikely) collision with any previously issued code.
func (s *ConnectionService) GenerateCode(ctx context.Context, userID string) (*models.ConnectionCode, error) {
	if _, err := s.store.GetConnectionByUser(ctx, userID); err == nil {
		return nil, ErrAlreadyPaired
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		raw, err := pairing.GenerateCode()
		if err != nil {
			return nil, err
		}
		code := pairing.NewCode(raw, userID, now)
		err = s.store.CreateConnectionCode(ctx, code)
		if err == nil {
			slog.Info("Connection code issued", "user_id", userID, "expires_at", code.ExpiresAt)
			return code, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		slog.Debug("Connection code collision, re-rolling", "attempt", attempt)
	}
	return nil, fmt.Errorf("failed to generate a unique code after %d attempts", maxCodeAttempts)
}

// Redeem consumes a valid code and creates a pending connection between the
// code's creator (auto-accepted) and the redeemer. The consume is a single
// guarded write, so two users redeeming the same code concurrently cannot
// both succeed.
func (s *ConnectionService) Redeem(ctx context.Context, code, userID string) (*models.SharedConnection, error) {
	now := time.Now()

	rec, err := s.store.GetConnectionCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if outcome := pairing.CheckCode(rec, now); outcome != pairing.CodeValid {
		return nil, codeOutcomeError(outcome)
	}
	if rec.CreatedBy == userID {
		return nil, ErrSelfPairing
	}

	// Each user holds at most one connection, on either side.
	for _, id := range []string{userID, rec.CreatedBy} {
		if _, err := s.store.GetConnectionByUser(ctx, id); err == nil {
			return nil, ErrAlreadyPaired
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if err := s.store.ConsumeConnectionCode(ctx, code, userID, now); err != nil {
		if !errors.Is(err, storage.ErrConflict) {
			return nil, err
		}
		// Lost a race or the code aged out between check and consume;
		// re-read to report the precise cause.
		rec, rerr := s.store.GetConnectionCode(ctx, code)
		if rerr != nil {
			return nil, ErrCodeNotFound
		}
		return nil, codeOutcomeError(pairing.CheckCode(rec, now))
	}

	conn := pairing.NewConnection(rec.CreatedBy, userID, now)
	if err := s.store.CreateConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	slog.Info("Connection created", "connection_id", conn.ID,
		"inviter", conn.User1ID, "redeemer", conn.User2ID, "status", conn.Status)
	return conn, nil
}

// Accept sets the caller's acceptance flag on their connection, leaving the
// other side untouched; the connection goes active once both sides are true.
// An empty connectionID resolves to the caller's current connection.
func (s *ConnectionService) Accept(ctx context.Context, connectionID, userID string) (*models.SharedConnection, error) {
	if connectionID == "" {
		conn, err := s.store.GetConnectionByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrNotPaired
			}
			return nil, err
		}
		connectionID = conn.ID
	}

	updated, err := s.store.AcceptConnection(ctx, connectionID, userID, time.Now())
	if err != nil {
		slog.Error("Accept failed", "connection_id", connectionID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Connection accepted", "connection_id", updated.ID, "user_id", userID, "status", updated.Status)
	return updated, nil
}

// Disconnect removes the user's connection, whatever its state, for both
// participants. Destructive and immediate; there is no soft "ended" state.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string) error {
	if err := s.store.DeleteConnectionsByUser(ctx, userID); err != nil {
		slog.Error("Disconnect failed", "user_id", userID, "error", err)
		return err
	}
	slog.Info("Disconnected", "user_id", userID)
	return nil
}

// Get returns the user's connection with the counterpart's profile, or
// ErrNotPaired.
func (s *ConnectionService) Get(ctx context.Context, userID string) (*ConnectionView, error) {
	conn, err := s.store.GetConnectionByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotPaired
		}
		return nil, err
	}

	view := &ConnectionView{
		Connection: conn,
		Active:     pairing.SharedVisible(conn),
	}
	partner, err := s.store.GetUserByID(ctx, conn.OtherUser(userID))
	if err != nil {
		// The counterpart profile is decoration; a missing row must not
		// hide the connection itself.
		slog.Warn("Failed to load partner profile", "connection_id", conn.ID, "error", err)
	} else {
		view.Partner = partner
	}
	return view, nil
}

func codeOutcomeError(outcome pairing.CodeOutcome) error {
	switch outcome {
	case pairing.CodeExpired:
		return ErrCodeExpired
	case pairing.CodeUsed:
		return ErrCodeUsed
	case pairing.CodeNotFound:
		return ErrCodeNotFound
	default:
		return nil
	}
}
