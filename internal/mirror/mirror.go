// Package mirror keeps a local, render-ready copy of the remote equipment
// collection in sync with its snapshot feed, and derives the filtered view,
// the aggregate counts and the category set from it.
package mirror

import (
	"context"
	"sort"
	"sync"

	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/models"
	"github.com/avelasco-dev/inventario/internal/store"
)

// Mirror owns the materialized id→record map. The only writer is the
// snapshot loop in Run; mutations reach the map exclusively through a
// delivered snapshot, never directly.
type Mirror struct {
	st         store.Store
	collection string
	log        logging.Logger
	onChange   func([]models.Item)
	onError    func(error)

	mu      sync.RWMutex
	items   map[string]models.Item
	loading bool
	lastErr error
}

// Option configures optional Mirror behavior.
type Option func(*Mirror)

// WithOnChange registers a callback invoked with the materialized list
// after every applied snapshot, including the first (possibly empty) one.
func WithOnChange(fn func([]models.Item)) Option {
	return func(m *Mirror) { m.onChange = fn }
}

// WithOnError registers a callback for subscription failures. The mirror
// keeps its last state and stops reporting itself as loading; it never
// retries on its own.
func WithOnError(fn func(error)) Option {
	return func(m *Mirror) { m.onError = fn }
}

func New(st store.Store, collection string, log logging.Logger, opts ...Option) *Mirror {
	m := &Mirror{
		st:         st,
		collection: collection,
		log:        log.With("module", "mirror", "collection", collection),
		items:      make(map[string]models.Item),
		loading:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run subscribes to the collection and applies snapshots until ctx is done
// or the feed terminates. Snapshots are applied strictly in delivery order.
func (m *Mirror) Run(ctx context.Context) error {
	sub, err := m.st.Subscribe(ctx, m.collection)
	if err != nil {
		m.fail(ctx, err)
		return err
	}
	defer sub.Close()

	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return nil
			}
			m.apply(ctx, snap)

		case err, ok := <-sub.Errors():
			if ok && err != nil {
				m.fail(ctx, err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Mirror) apply(ctx context.Context, snap store.Snapshot) {
	next := make(map[string]models.Item, len(snap.Docs))
	for _, doc := range snap.Docs {
		next[doc.ID] = models.FromDocument(doc)
	}

	m.mu.Lock()
	m.items = next
	m.loading = false
	m.lastErr = nil
	m.mu.Unlock()

	m.log.Debug(ctx, "snapshot applied", "docs", len(next))

	if m.onChange != nil {
		m.onChange(m.Items())
	}
}

func (m *Mirror) fail(ctx context.Context, err error) {
	m.mu.Lock()
	m.loading = false
	m.lastErr = err
	m.mu.Unlock()

	m.log.Error(ctx, "subscription error", "error", err.Error())

	if m.onError != nil {
		m.onError(err)
	}
}

// Items returns the materialized list ordered by name, then id.
func (m *Mirror) Items() []models.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Get returns one record by id from the current mapping.
func (m *Mirror) Get(id string) (models.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	return item, ok
}

// Loading reports whether no snapshot and no error have arrived yet.
func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the last subscription error, or nil after a healthy snapshot.
func (m *Mirror) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Filter returns the records matching the criteria, in Items order.
func (m *Mirror) Filter(c Criteria) []models.Item {
	return FilterItems(m.Items(), c)
}

// Stats computes the aggregate counts over the full mapping in one pass.
func (m *Mirror) Stats() Stats {
	return ComputeStats(m.Items())
}

// Categories returns the sorted set of categories present in the mapping.
func (m *Mirror) Categories() []string {
	return CategorySet(m.Items())
}
