package pairing

import (
	"strings"
	"testing"
	"time"

	"billmate/internal/models"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean the
	// generator is broken, not unlucky.
	if len(seen) < 95 {
		t.Errorf("expected ~100 distinct codes, got %d", len(seen))
	}
}

func TestCheckCode(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	t.Run("fresh code is valid", func(t *testing.T) {
		code := NewCode("ABC123", "alice", now)
		if got := CheckCode(code, now.Add(time.Hour)); got != CodeValid {
			t.Errorf("CheckCode = %v, want valid", got)
		}
	})

	t.Run("nil record is not found", func(t *testing.T) {
		if got := CheckCode(nil, now); got != CodeNotFound {
			t.Errorf("CheckCode = %v, want not found", got)
		}
	})

	t.Run("consumed code is used", func(t *testing.T) {
		code := NewCode("ABC123", "alice", now)
		code.UsedBy = "bob"
		code.UsedAt = now.Add(time.Minute).Unix()
		if got := CheckCode(code, now.Add(2*time.Minute)); got != CodeUsed {
			t.Errorf("CheckCode = %v, want used", got)
		}
	})

	t.Run("code is invalid at exactly 24h", func(t *testing.T) {
		code := NewCode("ABC123", "alice", now)
		if got := CheckCode(code, now.Add(CodeTTL)); got != CodeExpired {
			t.Errorf("CheckCode = %v, want expired", got)
		}
	})

	t.Run("expiry wins over consumption", func(t *testing.T) {
		// Generated at T, consumed at T+25h (should never happen, but a
		// validator must still report expired, not used).
		code := NewCode("ABC123", "alice", now)
		code.UsedBy = "bob"
		code.UsedAt = now.Add(25 * time.Hour).Unix()
		if got := CheckCode(code, now.Add(26*time.Hour)); got != CodeExpired {
			t.Errorf("CheckCode = %v, want expired", got)
		}
	})

	t.Run("unused but expired is expired", func(t *testing.T) {
		code := NewCode("ABC123", "alice", now)
		if got := CheckCode(code, now.Add(CodeTTL+time.Second)); got != CodeExpired {
			t.Errorf("CheckCode = %v, want expired", got)
		}
	})
}

func TestNewCodeExpiry(t *testing.T) {
	now := time.Now()
	code := NewCode("XYZ789", "alice", now)

	if code.ExpiresAt-code.CreatedAt != int64(CodeTTL.Seconds()) {
		t.Errorf("expiry window = %ds, want %ds", code.ExpiresAt-code.CreatedAt, int64(CodeTTL.Seconds()))
	}
	if code.Used() {
		t.Error("fresh code must not read as used")
	}
}

func TestCodeOutcomeString(t *testing.T) {
	outcomes := map[CodeOutcome]string{
		CodeValid:    "valid",
		CodeNotFound: "not found",
		CodeExpired:  "expired",
		CodeUsed:     "already used",
	}
	for o, want := range outcomes {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}

func TestConnectionHandshake(t *testing.T) {
	now := time.Now()

	t.Run("new connection is pending with inviter accepted", func(t *testing.T) {
		conn := NewConnection("alice", "bob", now)
		if !conn.User1Accepted || conn.User2Accepted {
			t.Errorf("acceptance flags = (%v, %v), want (true, false)", conn.User1Accepted, conn.User2Accepted)
		}
		if conn.Status != models.ConnectionPending {
			t.Errorf("status = %q, want pending", conn.Status)
		}
		if SharedVisible(conn) {
			t.Error("pending connection must not grant shared visibility")
		}
	})

	t.Run("both sides accepted becomes active", func(t *testing.T) {
		conn := NewConnection("alice", "bob", now)
		conn.User2Accepted = true
		conn.Status = ComputeStatus(conn.User1Accepted, conn.User2Accepted)
		if conn.Status != models.ConnectionActive {
			t.Errorf("status = %q, want active", conn.Status)
		}
		if !SharedVisible(conn) {
			t.Error("active connection must grant shared visibility")
		}
	})

	t.Run("one-sided acceptance stays pending", func(t *testing.T) {
		if got := ComputeStatus(true, false); got != models.ConnectionPending {
			t.Errorf("ComputeStatus(true, false) = %q, want pending", got)
		}
		if got := ComputeStatus(false, true); got != models.ConnectionPending {
			t.Errorf("ComputeStatus(false, true) = %q, want pending", got)
		}
	})

	t.Run("nil connection is never visible", func(t *testing.T) {
		if SharedVisible(nil) {
			t.Error("nil connection must not grant shared visibility")
		}
	})
}

func TestConnectionHelpers(t *testing.T) {
	conn := NewConnection("alice", "bob", time.Now())

	if !conn.Involves("alice") || !conn.Involves("bob") {
		t.Error("both participants must be involved")
	}
	if conn.Involves("carol") {
		t.Error("outsider must not be involved")
	}
	if got := conn.OtherUser("alice"); got != "bob" {
		t.Errorf("OtherUser(alice) = %q, want bob", got)
	}
	if got := conn.OtherUser("bob"); got != "alice" {
		t.Errorf("OtherUser(bob) = %q, want alice", got)
	}
	if got := conn.OtherUser("carol"); got != "" {
		t.Errorf("OtherUser(carol) = %q, want empty", got)
	}
}
