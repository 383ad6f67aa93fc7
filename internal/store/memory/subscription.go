package memory

import (
	"sync"

	"github.com/avelasco-dev/inventario/internal/store"
)

// subscription queues snapshots internally and drains them through a single
// dispatch goroutine, so a slow consumer never blocks the store's write path
// and delivery order is preserved.
type subscription struct {
	snaps chan store.Snapshot
	errs  chan error

	mu      sync.Mutex
	pending []store.Snapshot

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscription() *subscription {
	sub := &subscription{
		snaps: make(chan store.Snapshot),
		errs:  make(chan error, 1),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go sub.dispatch()
	return sub
}

func (s *subscription) Snapshots() <-chan store.Snapshot { return s.snaps }
func (s *subscription) Errors() <-chan error             { return s.errs }

func (s *subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *subscription) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) push(snap store.Snapshot) {
	s.mu.Lock()
	s.pending = append(s.pending, snap)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.errs <- err:
	case <-s.done:
	default:
	}
}

func (s *subscription) dispatch() {
	defer close(s.snaps)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			select {
			case s.snaps <- next:
			case <-s.done:
				return
			}
		}
	}
}
