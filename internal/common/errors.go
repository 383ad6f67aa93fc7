// Package common defines shared constants and sentinel errors used across
// inventario components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")

	// Generic internal failure.
	ErrorInternal = errors.New("internal error")

	// Auth errors.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Subscription lifecycle.
	ErrSubscriptionClosed = errors.New("subscription closed")
)
