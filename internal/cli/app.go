// Package cli implements the terminal dashboard: a REPL over the live
// equipment mirror with session handling and idle termination.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avelasco-dev/inventario/internal/auth"
	authmemory "github.com/avelasco-dev/inventario/internal/auth/memory"
	authrest "github.com/avelasco-dev/inventario/internal/auth/rest"
	"github.com/avelasco-dev/inventario/internal/config"
	"github.com/avelasco-dev/inventario/internal/idle"
	"github.com/avelasco-dev/inventario/internal/inventory"
	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/mirror"
	"github.com/avelasco-dev/inventario/internal/store"
	storememory "github.com/avelasco-dev/inventario/internal/store/memory"
	storepostgres "github.com/avelasco-dev/inventario/internal/store/postgres"
	storeredis "github.com/avelasco-dev/inventario/internal/store/redis"
)

// devSecretKey signs session tokens of the embedded account provider. Only
// the memory backend uses it; remote deployments authenticate via the REST
// provider.
const devSecretKey = "inventario-dev-secret"

// Development credentials seeded into the embedded provider so a fresh
// memory-backend run has someone to sign in as.
const (
	devAdminEmail    = "admin@inventario.local"
	devAdminPassword = "admin123"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	store   store.Store
	authCli auth.Client
	service *inventory.Service

	reader *bufio.Reader
	out    io.Writer

	// unsubscribe detaches the session feed listener registered in NewApp.
	unsubscribe func()

	// Session state is written by the REPL goroutine and by the guard's
	// timer goroutine on expiry.
	mu           sync.Mutex
	user         *auth.User
	mirror       *mirror.Mirror
	mirrorCancel context.CancelFunc
	guard        *idle.Guard
}

// NewApp wires the store backend, the auth client and the mutation service
// according to the configuration. The mirror and the guard are per-session:
// they come up and down with the identities the auth client reports on its
// session feed.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	var authCli auth.Client
	if cfg.AuthEndpoint != "" {
		authCli = authrest.NewClient(cfg.AuthEndpoint, cfg.AuthAPIKey)
	} else {
		mem := authmemory.NewClient(devSecretKey)
		uid, err := mem.AddAccount(devAdminEmail, devAdminPassword)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("seed account error: %w", err)
		}
		// Only the memory backend pairs with the embedded provider, so a
		// role document can be seeded directly.
		if ms, ok := st.(*storememory.Store); ok {
			if err := ms.Seed(auth.UsersCollection, uid, map[string]any{"role": auth.RoleAdmin}); err != nil {
				_ = st.Close()
				return nil, fmt.Errorf("seed role error: %w", err)
			}
		}
		authCli = mem
	}

	svc := inventory.NewService(st, inventory.CollectionPath(cfg.AppID), log)

	app := &App{
		config:  cfg,
		log:     log.With("module", "cli"),
		store:   st,
		authCli: authCli,
		service: svc,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	app.unsubscribe = app.authCli.OnSessionChange(func(u *auth.User) {
		app.sessionChanged(ctx, u)
	})
	return app, nil
}

func newStore(ctx context.Context, cfg *config.Config, log logging.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return storeredis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	case config.BackendPostgres:
		return storepostgres.New(ctx, cfg.DatabaseDSN, log)
	default:
		return storememory.New(), nil
	}
}

// Run starts the REPL. SIGINT/SIGTERM end the current session through the
// guard's teardown path before the process leaves.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			a.shutdown()
			cancel()
		case <-ctx.Done():
		}
	}()

	defer func() {
		a.shutdown()
		a.unsubscribe()
		_ = a.authCli.Close()
		_ = a.store.Close()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	user, _ := a.session()
	return user != nil
}

// session returns the current user and mirror under the session lock.
func (a *App) session() (*auth.User, *mirror.Mirror) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user, a.mirror
}

// Touch records user interaction for the idle guard.
func (a *App) Touch() {
	a.mu.Lock()
	guard := a.guard
	a.mu.Unlock()
	if guard != nil {
		guard.Activity()
	}
}

func (a *App) status() string {
	user, _ := a.session()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", user.Email, user.Role)
}

// shutdown ends the current session through the guard, if one is running.
func (a *App) shutdown() {
	a.mu.Lock()
	guard := a.guard
	a.mu.Unlock()
	if guard != nil {
		guard.Shutdown()
	}
}
