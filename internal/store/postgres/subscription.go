package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/avelasco-dev/inventario/internal/store"
)

type subscription struct {
	st         *Store
	collection string
	conn       *pgx.Conn
	ctx        context.Context
	cancel     context.CancelFunc

	snaps chan store.Snapshot
	errs  chan error
	once  sync.Once
}

// newSubscription opens a dedicated native connection for LISTEN. The
// pooled database/sql handle cannot hold a listen session.
func newSubscription(ctx context.Context, st *Store, collection string) (*subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := pgx.Connect(ctx, st.dsn)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("listen connect error: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(ctx)
		cancel()
		return nil, fmt.Errorf("listen error: %w", err)
	}

	return &subscription{
		st:         st,
		collection: collection,
		conn:       conn,
		ctx:        ctx,
		cancel:     cancel,
		snaps:      make(chan store.Snapshot, 16),
		errs:       make(chan error, 1),
	}, nil
}

func (s *subscription) Snapshots() <-chan store.Snapshot { return s.snaps }
func (s *subscription) Errors() <-chan error             { return s.errs }

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
	})
	return nil
}

func (s *subscription) run() {
	defer close(s.snaps)
	defer func() {
		_ = s.conn.Close(context.Background())
	}()

	if !s.emit() {
		return
	}

	for {
		n, err := s.conn.WaitForNotification(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.fail(fmt.Errorf("notification wait error: %w", err))
			return
		}
		if n.Payload != s.collection {
			continue
		}
		if !s.emit() {
			return
		}
	}
}

func (s *subscription) emit() bool {
	snap, err := s.st.readSnapshot(s.ctx, s.collection)
	if err != nil {
		if s.ctx.Err() != nil {
			return false
		}
		s.fail(err)
		return false
	}

	select {
	case s.snaps <- snap:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
