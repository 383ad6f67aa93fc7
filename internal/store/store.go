package store

import "context"

// Document is one record in a remote collection: an opaque id assigned by
// the store plus a flat mapping of named field values. Field values are
// strings, numbers, booleans, time.Time, or JSON-shaped nested values
// (maps and slices thereof).
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot carries the complete current document set of a collection.
// The store emits one on subscription start and one after every change,
// in the order the changes were applied.
type Snapshot struct {
	Docs []Document
}

// Subscription is a live feed of collection snapshots.
//
// Snapshots and Errors are owned by the subscription and are closed when the
// subscription ends. Errors delivers non-fatal failures (connectivity loss,
// permission denial); the feed does not retry on its own. Close is
// idempotent and guarantees no further delivery after it returns.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Errors() <-chan error
	Close() error
}

// Store is the client contract of the remote document store.
//
// Mutations are requests: their effect becomes observable only through a
// subsequent snapshot on a Subscription, never by direct local mutation.
type Store interface {
	// Subscribe registers interest in a collection. The first snapshot is
	// delivered even if the collection is empty.
	Subscribe(ctx context.Context, collection string) (Subscription, error)

	// Create stores a new document and returns its store-assigned id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Update merges patch into the document's top-level fields.
	Update(ctx context.Context, collection string, id string, patch map[string]any) error

	// Delete removes the document permanently.
	Delete(ctx context.Context, collection string, id string) error

	// Get reads one document. Returns common.ErrorNotFound if absent.
	Get(ctx context.Context, collection string, id string) (Document, error)

	Close() error
}
