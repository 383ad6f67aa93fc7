// Package memory provides an embedded implementation of the auth client
// contract: accounts seeded at construction, bcrypt password verification,
// and HS256 session tokens. It serves local deployments and tests, where a
// hosted identity provider is not available.
package memory

import (
	"context"
	"time"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = 12 * time.Hour

type account struct {
	id   string
	hash []byte
}

type Client struct {
	hub      auth.SessionHub
	secret   []byte
	accounts map[string]account // keyed by email
}

func NewClient(secretKey string) *Client {
	return &Client{
		secret:   []byte(secretKey),
		accounts: make(map[string]account),
	}
}

// AddAccount registers an account with a bcrypt-hashed password and returns
// the new user id. Intended for seeding at composition time, before SignIn
// is ever called; it is not safe to call concurrently with SignIn.
func (c *Client) AddAccount(email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	c.accounts[email] = account{id: id, hash: hash}
	return id, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	acc, ok := c.accounts[email]
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(acc.id, c.secret, tokenValidity)
	if err != nil {
		return nil, err
	}

	user := &auth.User{ID: acc.id, Email: email, Token: token}
	c.hub.Set(user)

	return user, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.hub.Set(nil)
	return nil
}

func (c *Client) OnSessionChange(fn func(*auth.User)) func() {
	return c.hub.OnSessionChange(fn)
}

func (c *Client) Close() error { return nil }
