package auth

import "sync"

// SessionHub tracks the current identity and fans session changes out to
// registered listeners. Providers embed it so both deliver the same
// OnSessionChange semantics: a listener gets the current state immediately
// on registration, then every subsequent change.
type SessionHub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*User)
	current   *User
}

// Current returns the signed-in identity, or nil.
func (h *SessionHub) Current() *User {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Set records the new session state and notifies every listener.
func (h *SessionHub) Set(u *User) {
	h.mu.Lock()
	h.current = u
	fns := make([]func(*User), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

// OnSessionChange registers fn and synchronously delivers the current state.
// The returned function unregisters fn; calling it twice is harmless.
func (h *SessionHub) OnSessionChange(fn func(*User)) func() {
	h.mu.Lock()
	if h.listeners == nil {
		h.listeners = make(map[int]func(*User))
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	current := h.current
	h.mu.Unlock()

	fn(current)

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}
