// Package pairing implements the connection handshake between two users:
// short-lived single-use invitation codes and the two-sided acceptance state
// machine that gates shared bill visibility.
package pairing

import (
	"crypto/rand"
	"fmt"
	"time"

	"billmate/internal/models"
)

const (
	// CodeLength is the fixed length of a connection code.
	CodeLength = 6

	// CodeTTL is how long a code stays redeemable after issue.
	CodeTTL = 24 * time.Hour

	// codeAlphabet excludes nothing: codes are read over the shoulder, not
	// typed from memory, so lookalike characters are acceptable.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeOutcome is the tagged result of checking a connection code. Callers
// that want the collapsed "invalid" behavior can compare against CodeValid.
type CodeOutcome int

const (
	CodeValid CodeOutcome = iota
	CodeNotFound
	CodeExpired
	CodeUsed
)

func (o CodeOutcome) String() string {
	switch o {
	case CodeValid:
		return "valid"
	case CodeNotFound:
		return "not found"
	case CodeExpired:
		return "expired"
	case CodeUsed:
		return "already used"
	}
	return fmt.Sprintf("CodeOutcome(%d)", int(o))
}

// GenerateCode returns an unpredictable fixed-length alphanumeric code.
// Uniqueness is the caller's concern: re-roll on collision.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// NewCode builds a code record for the given inviter, expiring CodeTTL from
// now.
func NewCode(code, creatorID string, now time.Time) *models.ConnectionCode {
	return &models.ConnectionCode{
		Code:      code,
		CreatedBy: creatorID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(CodeTTL).Unix(),
	}
}

// CheckCode classifies a code record at the given instant. A nil record means
// the code was never issued. Expiry wins over consumption when both apply,
// matching "invalid after expiry regardless of use state".
func CheckCode(code *models.ConnectionCode, now time.Time) CodeOutcome {
	if code == nil {
		return CodeNotFound
	}
	if now.Unix() >= code.ExpiresAt {
		return CodeExpired
	}
	if code.Used() {
		return CodeUsed
	}
	return CodeValid
}
