package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case req.Email == "ana@example.com" && req.Password == "s3cret":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"idToken": "tok-123",
				"localId": "uid-1",
				"email":   req.Email,
			})
		case req.Email == "ana@example.com":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"EMAIL_NOT_FOUND"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInSuccess(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL, "test-key")

	user, err := c.SignIn(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "tok-123", user.Token)
}

func TestSignInMapsCredentialErrors(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL, "test-key")

	_, err := c.SignIn(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = c.SignIn(context.Background(), "nadie@example.com", "x")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSignInMapsServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"INTERNAL"}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "test-key")
	_, err := c.SignIn(context.Background(), "a@b.c", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL, "test-key")

	var last *auth.User
	calls := 0
	c.OnSessionChange(func(u *auth.User) {
		last = u
		calls++
	})
	require.Equal(t, 1, calls)
	assert.Nil(t, last)

	_, err := c.SignIn(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.NotNil(t, last)

	require.NoError(t, c.SignOut(context.Background()))
	require.Equal(t, 3, calls)
	assert.Nil(t, last)
}
