package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billmate/internal/auth"
	"billmate/internal/pairing"
	"billmate/internal/service"
	"billmate/internal/storage/memory"
)

type testEnv struct {
	server *Server
	store  *memory.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	server := NewServer(
		&ServerConfig{Addr: ":0"},
		jwtManager,
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store),
		service.NewBillService(store),
		service.NewConnectionService(store),
		service.NewPreferenceService(store),
	)
	return &testEnv{server: server, store: store}
}

// do sends a request through the full router and decodes the JSON response
// into out when it is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
	}
	return rec
}

func (e *testEnv) signUp(t *testing.T, email, name string) (userID, token string) {
	t.Helper()
	var session struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	rec := e.do(t, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"email": email, "name": name, "password": "hunter2hunter2"}, &session)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, session.Token)
	return session.User.ID, session.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.signUp(t, "alice@example.com", "Alice")

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "",
			map[string]string{"email": "alice@example.com", "name": "Alice2", "password": "hunter2hunter2"}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "",
			map[string]string{"email": "short@example.com", "name": "S", "password": "short"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errCodeInvalidInput, errorCode(t, rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/auth/signin", "",
			map[string]string{"email": "alice@example.com", "password": "wrong-password"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/bills", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, errCodeUnauthorized, errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/bills", "not-a-jwt", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("profile round-trip", func(t *testing.T) {
		var user struct {
			Name      string `json:"name"`
			AvatarURL string `json:"avatarUrl"`
		}
		rec := env.do(t, http.MethodPut, "/api/v1/me", token,
			map[string]string{"name": "Alice B.", "avatarUrl": "https://img.example.com/a.png"}, &user)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Alice B.", user.Name)

		rec = env.do(t, http.MethodGet, "/api/v1/me", token, nil, &user)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Alice B.", user.Name)
	})
}

func TestBillEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "alice@example.com", "Alice")

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	rec := env.do(t, http.MethodPost, "/api/v1/bills", token, map[string]any{
		"name":      "Rent",
		"amount":    "1200.50",
		"dueDate":   "2026-09-01",
		"frequency": "monthly",
		"notes":     "",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, created.ID)

	t.Run("list", func(t *testing.T) {
		var resp struct {
			Bills []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"bills"`
		}
		rec := env.do(t, http.MethodGet, "/api/v1/bills", token, nil, &resp)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, resp.Bills, 1)
		assert.Equal(t, "Rent", resp.Bills[0].Name)
		assert.NotEmpty(t, resp.Bills[0].Status)
	})

	t.Run("invalid input", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/bills", token, map[string]any{
			"name":      "",
			"amount":    "10",
			"dueDate":   "2026-09-01",
			"frequency": "monthly",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, errCodeInvalidInput, errorCode(t, rec))
	})

	t.Run("set paid and activities", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bills/%s/paid", created.ID)
		rec := env.do(t, http.MethodPut, path, token, map[string]bool{"paid": true}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Activities []struct {
				Type string `json:"type"`
			} `json:"activities"`
		}
		rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bills/%s/activities", created.ID), token, nil, &resp)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, resp.Activities)
	})

	t.Run("comment", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bills/%s/comments", created.ID)
		rec := env.do(t, http.MethodPost, path, token, map[string]string{"text": "pay before the 1st"}, nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown bill", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/bills/no-such-bill", token, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/v1/bills/" + created.ID
		rec := env.do(t, http.MethodDelete, path, token, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, path, token, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestConnectionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.signUp(t, "alice@example.com", "Alice")
	_, bobToken := env.signUp(t, "bob@example.com", "Bob")

	var issued struct {
		Code string `json:"code"`
	}
	rec := env.do(t, http.MethodPost, "/api/v1/connection/code", aliceToken, nil, &issued)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, issued.Code, pairing.CodeLength)

	t.Run("unknown code", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/connection/redeem", bobToken,
			map[string]string{"code": "ZZZZZZ"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, errCodeInvalidCode, errorCode(t, rec))
	})

	t.Run("expired code", func(t *testing.T) {
		stale := pairing.NewCode("STALE1", "someone-else", time.Now().Add(-25*time.Hour))
		require.NoError(t, env.store.CreateConnectionCode(context.Background(), stale))

		rec := env.do(t, http.MethodPost, "/api/v1/connection/redeem", bobToken,
			map[string]string{"code": "STALE1"}, nil)
		assert.Equal(t, http.StatusGone, rec.Code)
		assert.Equal(t, errCodeCodeExpired, errorCode(t, rec))
	})

	t.Run("handshake over http", func(t *testing.T) {
		// Codes arrive uppercased regardless of client casing.
		rec := env.do(t, http.MethodPost, "/api/v1/connection/redeem", bobToken,
			map[string]string{"code": issued.Code}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var view struct {
			Active  bool `json:"active"`
			Partner *struct {
				Name string `json:"name"`
			} `json:"partner"`
		}
		rec = env.do(t, http.MethodGet, "/api/v1/connection", aliceToken, nil, &view)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, view.Active)
		require.NotNil(t, view.Partner)
		assert.Equal(t, "Bob", view.Partner.Name)

		rec = env.do(t, http.MethodPost, "/api/v1/connection/accept", bobToken, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/connection", aliceToken, nil, &view)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, view.Active)
	})

	t.Run("reused code", func(t *testing.T) {
		_, carolToken := env.signUp(t, "carol@example.com", "Carol")
		rec := env.do(t, http.MethodPost, "/api/v1/connection/redeem", carolToken,
			map[string]string{"code": issued.Code}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, errCodeCodeUsed, errorCode(t, rec))
	})

	t.Run("disconnect", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/connection", aliceToken, nil, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/connection", bobToken, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, errCodeNotPaired, errorCode(t, rec))
	})
}

func TestPreferenceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "alice@example.com", "Alice")

	var pref struct {
		DaysBeforeDue []int `json:"daysBeforeDue"`
		NotifyOnPaid  bool  `json:"notifyOnPaid"`
	}
	rec := env.do(t, http.MethodGet, "/api/v1/preferences", token, nil, &pref)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1}, pref.DaysBeforeDue)
	assert.True(t, pref.NotifyOnPaid)

	rec = env.do(t, http.MethodPut, "/api/v1/preferences", token, map[string]any{
		"daysBeforeDue":   []int{1, 3},
		"notifyOnPaid":    false,
		"notifyOnOverdue": true,
	}, &pref)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1, 3}, pref.DaysBeforeDue)
	assert.False(t, pref.NotifyOnPaid)
}
