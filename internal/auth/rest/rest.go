// Package rest implements the auth client contract against a hosted
// identity-toolkit-style HTTP endpoint (signInWithPassword keyed by an API
// key, bearer id tokens).
package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/go-resty/resty/v2"
)

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// credentialErrors are the provider's message codes that mean "bad login",
// as opposed to an operational failure.
var credentialErrors = map[string]struct{}{
	"INVALID_LOGIN_CREDENTIALS": {},
	"INVALID_PASSWORD":          {},
	"EMAIL_NOT_FOUND":           {},
	"USER_DISABLED":             {},
}

type Client struct {
	hub        auth.SessionHub
	httpClient *resty.Client
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, apiKey: apiKey}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	var ok signInResponse
	var bad errorResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&ok).
		SetError(&bad).
		Post("/v1/accounts:signInWithPassword")
	if err != nil {
		return nil, fmt.Errorf("auth request error: %w", err)
	}

	if resp.IsError() {
		if _, isCred := credentialErrors[bad.Error.Message]; isCred {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service error: %s: %w", bad.Error.Message, common.ErrorInternal)
	}

	user := &auth.User{ID: ok.LocalID, Email: ok.Email, Token: ok.IDToken}
	c.hub.Set(user)

	return user, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	// The provider keeps no server-side session for password sign-in;
	// dropping the token locally ends the session.
	c.hub.Set(nil)
	return nil
}

func (c *Client) OnSessionChange(fn func(*auth.User)) func() {
	return c.hub.OnSessionChange(fn)
}

func (c *Client) Close() error { return nil }
