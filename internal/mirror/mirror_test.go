package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/models"
	"github.com/avelasco-dev/inventario/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeSub struct {
	snaps  chan store.Snapshot
	errs   chan error
	closed atomic.Int32
}

func newFakeSub() *fakeSub {
	return &fakeSub{
		snaps: make(chan store.Snapshot, 16),
		errs:  make(chan error, 1),
	}
}

func (f *fakeSub) Snapshots() <-chan store.Snapshot { return f.snaps }
func (f *fakeSub) Errors() <-chan error             { return f.errs }
func (f *fakeSub) Close() error                     { f.closed.Add(1); return nil }

type fakeStore struct {
	sub          *fakeSub
	subscribeErr error
}

func (f *fakeStore) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	return f.sub, nil
}

func (f *fakeStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	return "", nil
}
func (f *fakeStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return nil
}
func (f *fakeStore) Delete(ctx context.Context, collection, id string) error { return nil }
func (f *fakeStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	return store.Document{}, nil
}
func (f *fakeStore) Close() error { return nil }

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func doc(id, name, status string) store.Document {
	return store.Document{ID: id, Fields: map[string]any{
		models.FieldName:   name,
		models.FieldStatus: status,
	}}
}

func waitChange(t *testing.T, ch <-chan []models.Item) []models.Item {
	t.Helper()
	select {
	case items := <-ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirror change")
		return nil
	}
}

// ---- tests ----

func TestRunReplacesMappingPerSnapshot(t *testing.T) {
	fs := &fakeStore{sub: newFakeSub()}
	changes := make(chan []models.Item, 16)

	m := New(fs, "equipos", testLogger(), WithOnChange(func(items []models.Item) {
		changes <- items
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	// First snapshot, even empty, must surface and drop the loading flag.
	fs.sub.snaps <- store.Snapshot{}
	assert.Empty(t, waitChange(t, changes))
	assert.False(t, m.Loading())

	fs.sub.snaps <- store.Snapshot{Docs: []store.Document{doc("1", "Laptop X", "Disponible")}}
	items := waitChange(t, changes)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)

	// A later snapshot without doc 1 must discard it entirely.
	fs.sub.snaps <- store.Snapshot{Docs: []store.Document{
		doc("2", "Monitor A", "En Uso"),
		doc("3", "Cámara B", "Disponible"),
	}}
	items = waitChange(t, changes)
	require.Len(t, items, 2)
	_, ok := m.Get("1")
	assert.False(t, ok, "records absent from the snapshot must be dropped")

	fs.sub.snaps <- store.Snapshot{}
	assert.Empty(t, waitChange(t, changes))
}

func TestRunSurfacesSubscriptionErrorWithoutLosingState(t *testing.T) {
	fs := &fakeStore{sub: newFakeSub()}
	changes := make(chan []models.Item, 16)
	errs := make(chan error, 1)

	m := New(fs, "equipos", testLogger(),
		WithOnChange(func(items []models.Item) { changes <- items }),
		WithOnError(func(err error) { errs <- err }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	fs.sub.snaps <- store.Snapshot{Docs: []store.Document{doc("1", "Laptop X", "Disponible")}}
	waitChange(t, changes)

	wantErr := errors.New("permission denied")
	fs.sub.errs <- wantErr

	select {
	case got := <-errs:
		assert.ErrorIs(t, got, wantErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error signal")
	}

	assert.False(t, m.Loading())
	assert.ErrorIs(t, m.Err(), wantErr)
	// Stale data stays readable.
	assert.Len(t, m.Items(), 1)

	// The next healthy snapshot clears the error.
	fs.sub.snaps <- store.Snapshot{}
	waitChange(t, changes)
	assert.NoError(t, m.Err())
}

func TestRunReportsSubscribeFailure(t *testing.T) {
	wantErr := errors.New("unavailable")
	fs := &fakeStore{subscribeErr: wantErr}

	m := New(fs, "equipos", testLogger())
	err := m.Run(context.Background())

	assert.ErrorIs(t, err, wantErr)
	assert.False(t, m.Loading())
	assert.ErrorIs(t, m.Err(), wantErr)
	assert.Empty(t, m.Items())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fs := &fakeStore{sub: newFakeSub()}
	m := New(fs, "equipos", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	fs.sub.snaps <- store.Snapshot{}
	require.Eventually(t, func() bool { return !m.Loading() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	assert.Equal(t, int32(1), fs.sub.closed.Load())
}

func TestRunStopsWhenFeedTerminates(t *testing.T) {
	fs := &fakeStore{sub: newFakeSub()}
	m := New(fs, "equipos", testLogger())

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	close(fs.sub.snaps)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop when feed closed")
	}
}

func TestFirstSnapshotFeedsFilterAndStats(t *testing.T) {
	fs := &fakeStore{sub: newFakeSub()}
	changes := make(chan []models.Item, 1)
	m := New(fs, "equipos", testLogger(), WithOnChange(func(items []models.Item) {
		changes <- items
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	fs.sub.snaps <- store.Snapshot{Docs: []store.Document{doc("1", "Laptop X", "Disponible")}}
	waitChange(t, changes)

	filtered := m.Filter(Criteria{Category: CategoryAll, StatusGroup: StatusGroupActive, Search: ""})
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)

	stats := m.Stats()
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 0, stats.Decommissioned)
}
