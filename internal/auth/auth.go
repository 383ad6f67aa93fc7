// Package auth defines the client contract of the hosted authentication
// service and the session/user identity it produces.
package auth

import "context"

// User is the signed-in identity plus the role resolved once at sign-in.
// The role is held for the session's lifetime, never re-derived per action.
type User struct {
	ID    string
	Email string
	Role  string
	Token string
}

// Role values known to the dashboard. The remote role set is an external
// concern; anything unrecognized is treated like the reader role.
const (
	RoleAdmin   = "Administrador"
	RoleManager = "Gestor"
	RoleReader  = "Lector"
)

// Client is the auth service as consumed by the dashboard.
//
// SignIn reports bad credentials as common.ErrInvalidCredentials, distinct
// from generic failures. OnSessionChange registers a callback that receives
// the current identity, or nil once signed out; the returned function
// unregisters it.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
	OnSessionChange(fn func(*User)) (unsubscribe func())
	Close() error
}
