// Package idle terminates sessions left unattended. A guard watches user
// activity and walks through three states: active, warning, ended. Once the
// idle timeout fires the user gets a short grace period to react; if nothing
// happens the session is torn down.
package idle

import (
	"context"
	"sync"
	"time"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/logging"
)

// DefaultTimeout is how long the session may sit with no activity before
// the warning is shown.
const DefaultTimeout = 15 * time.Minute

// gracePeriod is the window between the warning and termination. It is
// deliberately not configurable.
const gracePeriod = 4 * time.Second

// State is the guard's lifecycle position.
type State int

const (
	StateActive State = iota
	StateWarning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning:
		return "warning"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Timer abstracts a stoppable one-shot timer so tests can drive time.
type Timer interface {
	Stop() bool
}

// Clock produces timers. The zero value of the package uses the real clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Guard tracks one user's session. A guard built with a nil user is inert:
// every method is a no-op and no timers are ever armed.
type Guard struct {
	user      *auth.User
	timeout   time.Duration
	clock     Clock
	log       logging.Logger
	onWarn    func()
	terminate func()

	mu       sync.Mutex
	state    State
	idle     Timer
	idleGen  uint64
	grace    Timer
	detached bool
}

type Option func(*Guard)

// WithTimeout overrides the idle timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithClock injects a fake clock for tests.
func WithClock(c Clock) Option {
	return func(g *Guard) { g.clock = c }
}

// WithOnWarn registers the callback invoked when the idle timeout elapses.
func WithOnWarn(fn func()) Option {
	return func(g *Guard) { g.onWarn = fn }
}

// NewGuard builds a guard for the given user and arms the idle timer.
// terminate runs at most once, whichever path ends the session.
func NewGuard(user *auth.User, log logging.Logger, terminate func(), opts ...Option) *Guard {
	g := &Guard{
		user:      user,
		timeout:   DefaultTimeout,
		clock:     realClock{},
		log:       log.With("module", "idle"),
		terminate: terminate,
	}
	for _, o := range opts {
		o(g)
	}
	if g.user == nil {
		g.state = StateEnded
		return g
	}
	g.mu.Lock()
	g.armIdle()
	g.mu.Unlock()
	return g
}

// armIdle starts a fresh idle window. The generation counter invalidates
// any earlier idle callback that fired before Stop could catch it and is
// still waiting on the lock. Callers hold g.mu.
func (g *Guard) armIdle() {
	g.idleGen++
	gen := g.idleGen
	g.idle = g.clock.AfterFunc(g.timeout, func() { g.idleElapsed(gen) })
}

// State reports the guard's current lifecycle position.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Activity records user interaction. In the active state it rearms the idle
// timer from now; in the warning state it cancels the pending termination
// and returns to active. After the session ended it does nothing.
func (g *Guard) Activity() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil || g.detached || g.state == StateEnded {
		return
	}

	if g.state == StateWarning {
		if g.grace != nil {
			g.grace.Stop()
			g.grace = nil
		}
		g.state = StateActive
		g.log.Debug(context.Background(), "session resumed from warning")
	}

	if g.idle != nil {
		g.idle.Stop()
	}
	g.armIdle()
}

func (g *Guard) idleElapsed(gen uint64) {
	g.mu.Lock()
	if g.detached || g.state != StateActive || gen != g.idleGen {
		g.mu.Unlock()
		return
	}
	g.state = StateWarning
	g.grace = g.clock.AfterFunc(gracePeriod, g.graceElapsed)
	warn := g.onWarn
	g.mu.Unlock()

	g.log.Info(context.Background(), "session idle, warning issued", "grace", gracePeriod)
	if warn != nil {
		warn()
	}
}

func (g *Guard) graceElapsed() {
	g.mu.Lock()
	if g.detached || g.state != StateWarning {
		g.mu.Unlock()
		return
	}
	g.end()
	g.mu.Unlock()

	g.log.Info(context.Background(), "session terminated after grace period")
	g.runTerminate()
}

// Shutdown ends the session immediately, bypassing the warning and grace
// timers. Safe to call in any state; terminate still runs at most once.
func (g *Guard) Shutdown() {
	g.mu.Lock()
	if g.user == nil || g.state == StateEnded {
		g.mu.Unlock()
		return
	}
	g.end()
	g.mu.Unlock()

	g.log.Info(context.Background(), "session shut down")
	g.runTerminate()
}

// Detach cancels all timers without terminating the session. Used when the
// session ends through another path, such as an explicit logout.
func (g *Guard) Detach() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.detached {
		return
	}
	g.detached = true
	g.stopTimers()
	if g.state != StateEnded {
		g.state = StateEnded
	}
}

// end transitions to StateEnded and stops timers. Callers hold g.mu.
func (g *Guard) end() {
	g.state = StateEnded
	g.stopTimers()
}

func (g *Guard) stopTimers() {
	if g.idle != nil {
		g.idle.Stop()
		g.idle = nil
	}
	if g.grace != nil {
		g.grace.Stop()
		g.grace = nil
	}
}

func (g *Guard) runTerminate() {
	g.mu.Lock()
	fn := g.terminate
	g.terminate = nil
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}
