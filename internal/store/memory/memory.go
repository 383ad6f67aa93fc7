// Package memory provides an in-process implementation of the document
// store contract. It backs unit tests and local development; semantics
// (snapshot-per-change, store-assigned ids, top-level patch merge) match
// the networked backends.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/store"
	"github.com/google/uuid"
)

var ErrStoreClosed = errors.New("store closed")

type Store struct {
	mu     sync.Mutex
	docs   map[string]map[string][]byte // collection -> id -> encoded fields
	subs   map[string][]*subscription
	closed bool
}

func New() *Store {
	return &Store{
		docs: make(map[string]map[string][]byte),
		subs: make(map[string][]*subscription),
	}
}

func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	sub := newSubscription()
	s.subs[collection] = append(s.subs[collection], sub)
	sub.push(s.snapshotLocked(collection))

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := store.EncodeFields(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	id := uuid.NewString()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	s.docs[collection][id] = data
	s.broadcastLocked(collection)

	return id, nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, patch map[string]any) error {
	patchData, err := store.EncodeFields(patch)
	if err != nil {
		return err
	}
	patchFields, err := store.DecodeFields(patchData)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	current, ok := s.docs[collection][id]
	if !ok {
		return common.ErrorNotFound
	}

	fields, err := store.DecodeFields(current)
	if err != nil {
		return err
	}
	for k, v := range patchFields {
		fields[k] = v
	}
	merged, err := store.EncodeFields(fields)
	if err != nil {
		return err
	}

	s.docs[collection][id] = merged
	s.broadcastLocked(collection)

	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.docs[collection][id]; !ok {
		return common.ErrorNotFound
	}

	delete(s.docs[collection], id)
	s.broadcastLocked(collection)

	return nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.Document{}, ErrStoreClosed
	}

	data, ok := s.docs[collection][id]
	if !ok {
		return store.Document{}, common.ErrorNotFound
	}
	fields, err := store.DecodeFields(data)
	if err != nil {
		return store.Document{}, err
	}

	return store.Document{ID: id, Fields: fields}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for _, subs := range s.subs {
		for _, sub := range subs {
			// Live consumers learn the feed ended rather than seeing a
			// silent stop.
			sub.fail(common.ErrSubscriptionClosed)
			_ = sub.Close()
		}
	}
	s.subs = make(map[string][]*subscription)

	return nil
}

// Seed inserts a document under a caller-chosen id, bypassing the
// store-assigned ids of Create. Meant for development fixtures such as role
// documents keyed by user id.
func (s *Store) Seed(collection string, id string, fields map[string]any) error {
	data, err := store.EncodeFields(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	s.docs[collection][id] = data
	s.broadcastLocked(collection)

	return nil
}

// FailSubscriptions injects an error into every live subscription of the
// collection. Test hook for the permission-denied/connectivity-lost path.
func (s *Store) FailSubscriptions(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[collection] {
		sub.fail(err)
	}
}

func (s *Store) snapshotLocked(collection string) store.Snapshot {
	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := store.Snapshot{Docs: make([]store.Document, 0, len(ids))}
	for _, id := range ids {
		fields, err := store.DecodeFields(s.docs[collection][id])
		if err != nil {
			continue
		}
		snap.Docs = append(snap.Docs, store.Document{ID: id, Fields: fields})
	}
	return snap
}

func (s *Store) broadcastLocked(collection string) {
	if len(s.subs[collection]) == 0 {
		return
	}
	snap := s.snapshotLocked(collection)

	alive := s.subs[collection][:0]
	for _, sub := range s.subs[collection] {
		if sub.isClosed() {
			continue
		}
		sub.push(snap)
		alive = append(alive, sub)
	}
	s.subs[collection] = alive
}
