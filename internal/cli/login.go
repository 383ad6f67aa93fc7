package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/idle"
	"github.com/avelasco-dev/inventario/internal/mirror"
)

// Login authenticates against the provider. The per-session machinery does
// not come up here: the app listens on the provider's session feed, and the
// provider delivers the change synchronously, so by the time SignIn returns
// the session is already running.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Already logged in; logout first.")
		return nil
	}

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	if _, err := a.authCli.SignIn(ctx, email, string(password)); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			fmt.Fprintln(a.out, "Invalid email or password.")
		} else {
			fmt.Fprintf(a.out, "Login failed: %v\n", err)
		}
		return err
	}

	if user, _ := a.session(); user != nil {
		fmt.Fprintf(a.out, "Welcome %s (%s)\n", user.Email, user.Role)
	}
	return nil
}

// Logout signs out on the provider; the session feed carries the nil
// identity back and tears the session down.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.authCli.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "sign out error", "error", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// sessionChanged is the session feed listener and the only place session
// state changes hands. A non-nil identity resolves the role and brings the
// mirror and the idle guard up; nil tears everything down. Every sign-out
// path, including idle expiry, funnels through here.
func (a *App) sessionChanged(ctx context.Context, user *auth.User) {
	if user == nil {
		a.teardownSession()
		return
	}
	user.Role = auth.LookupRole(ctx, a.store, user.ID)
	a.startSession(ctx, user)
}

func (a *App) startSession(ctx context.Context, user *auth.User) {
	mctx, cancel := context.WithCancel(ctx)
	m := mirror.New(a.store, a.service.Collection(), a.log)
	go func() {
		if err := m.Run(mctx); err != nil {
			a.log.Warn(mctx, "mirror stopped", "error", err)
		}
	}()

	guard := idle.NewGuard(user, a.log, func() { a.sessionExpired(ctx) },
		idle.WithTimeout(a.config.IdleTimeout),
		idle.WithOnWarn(func() {
			fmt.Fprintln(a.out, "\n*** Session idle: press Enter within a few seconds to stay signed in ***")
		}),
	)

	a.mu.Lock()
	a.user = user
	a.mirror = m
	a.mirrorCancel = cancel
	a.guard = guard
	a.mu.Unlock()
}

// sessionExpired is the guard's terminate callback. Signing out drives the
// teardown through the session feed like any other sign-out.
func (a *App) sessionExpired(ctx context.Context) {
	if err := a.authCli.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "sign out error", "error", err)
	}
	fmt.Fprintln(a.out, "\nSession ended due to inactivity.")
}

func (a *App) teardownSession() {
	a.mu.Lock()
	guard := a.guard
	cancel := a.mirrorCancel
	a.guard = nil
	a.mirrorCancel = nil
	a.mirror = nil
	a.user = nil
	a.mu.Unlock()

	if guard != nil {
		guard.Detach()
	}
	if cancel != nil {
		cancel()
	}
}
