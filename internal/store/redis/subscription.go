package redis

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/store"
)

type subscription struct {
	st         *Store
	collection string
	ps         *redis.PubSub

	snaps chan store.Snapshot
	errs  chan error
	done  chan struct{}
	once  sync.Once
}

func newSubscription(st *Store, collection string, ps *redis.PubSub) *subscription {
	return &subscription{
		st:         st,
		collection: collection,
		ps:         ps,
		snaps:      make(chan store.Snapshot, 16),
		errs:       make(chan error, 1),
		done:       make(chan struct{}),
	}
}

func (s *subscription) Snapshots() <-chan store.Snapshot { return s.snaps }
func (s *subscription) Errors() <-chan error             { return s.errs }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

// run emits the current collection state, then one full re-read per change
// notification. Notifications carry only the mutated document id; the state
// delivered downstream is always the complete collection.
func (s *subscription) run(ctx context.Context) {
	defer close(s.snaps)

	if !s.emit(ctx) {
		return
	}

	ch := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case _, ok := <-ch:
			if !ok {
				// The pubsub channel closing without Close being called
				// means the client connection went away underneath us.
				select {
				case <-s.done:
				default:
					select {
					case s.errs <- common.ErrSubscriptionClosed:
					default:
					}
				}
				return
			}
			if !s.emit(ctx) {
				return
			}
		}
	}
}

// emit reads and delivers a snapshot. It returns false when the subscription
// should stop, either because it was closed or because the read failed.
func (s *subscription) emit(ctx context.Context) bool {
	snap, err := s.st.readSnapshot(ctx, s.collection)
	if err != nil {
		select {
		case s.errs <- err:
		default:
		}
		return false
	}

	select {
	case s.snaps <- snap:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}
