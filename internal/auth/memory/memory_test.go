package memory

import (
	"context"
	"testing"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInSuccess(t *testing.T) {
	c := NewClient("test-secret")
	id, err := c.AddAccount("ana@example.com", "s3cret")
	require.NoError(t, err)

	user, err := c.SignIn(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	require.NotEmpty(t, user.Token)

	gotID, err := auth.GetUserIDFromToken(user.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	c := NewClient("test-secret")
	_, err := c.AddAccount("ana@example.com", "s3cret")
	require.NoError(t, err)

	_, err = c.SignIn(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = c.SignIn(context.Background(), "nadie@example.com", "s3cret")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestSessionChangeNotifications(t *testing.T) {
	c := NewClient("test-secret")
	_, err := c.AddAccount("ana@example.com", "s3cret")
	require.NoError(t, err)

	var events []*auth.User
	unsubscribe := c.OnSessionChange(func(u *auth.User) {
		events = append(events, u)
	})

	// Immediate delivery of the current (absent) session.
	require.Len(t, events, 1)
	assert.Nil(t, events[0])

	_, err = c.SignIn(context.Background(), "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[1])
	assert.Equal(t, "ana@example.com", events[1].Email)

	require.NoError(t, c.SignOut(context.Background()))
	require.Len(t, events, 3)
	assert.Nil(t, events[2])

	unsubscribe()
	_, _ = c.SignIn(context.Background(), "ana@example.com", "s3cret")
	assert.Len(t, events, 3, "no delivery after unsubscribe")
}
