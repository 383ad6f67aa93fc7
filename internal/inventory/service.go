// Package inventory implements the equipment mutation entry points: create,
// edit, decommission and hard-delete. Every mutating write appends exactly
// one history entry recording who acted and what changed.
//
// Mutations are requests against the remote store; the mirror never learns
// about them until the next snapshot arrives. There is no optimistic local
// update and no automatic retry.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/models"
	"github.com/avelasco-dev/inventario/internal/store"
)

var (
	ErrNoActor               = errors.New("no acting user")
	ErrAlreadyDecommissioned = errors.New("equipment already decommissioned")

	// ErrStatusLocked rejects edits that set or clear the decommissioned
	// status. That transition belongs to Decommission, which writes the
	// status, date, reason and history entry in one update.
	ErrStatusLocked = errors.New("decommissioned status cannot be edited")
)

// CollectionPath returns the tenant-scoped equipment collection.
func CollectionPath(appID string) string {
	return fmt.Sprintf("artifacts/%s/public/data/equipos", appID)
}

type Service struct {
	st         store.Store
	collection string
	log        logging.Logger
	now        func() time.Time
}

func NewService(st store.Store, collection string, log logging.Logger) *Service {
	return &Service{
		st:         st,
		collection: collection,
		log:        log.With("module", "inventory"),
		now:        time.Now,
	}
}

// Collection returns the collection path this service writes to.
func (s *Service) Collection() string {
	return s.collection
}

// Save creates the item when it has no id, otherwise applies a field-level
// update. An update reads the current remote state first, diffs it against
// the submitted version, and writes the changed fields together with a
// single history entry covering all of them. A no-op edit writes nothing.
// Entering or leaving the decommissioned status fails with ErrStatusLocked.
func (s *Service) Save(ctx context.Context, actor *auth.User, item models.Item) (string, error) {
	if actor == nil {
		return "", ErrNoActor
	}
	if item.ID == "" {
		return s.create(ctx, actor, item)
	}
	return item.ID, s.update(ctx, actor, item)
}

func (s *Service) create(ctx context.Context, actor *auth.User, item models.Item) (string, error) {
	if item.Status == models.StatusDecommissioned {
		return "", ErrStatusLocked
	}

	now := s.now()
	item.CreatedAt = now
	item.AddedBy = actor.ID
	item.History = []models.HistoryEntry{{
		Timestamp: now,
		User:      actorName(actor),
		Action:    models.ActionCreated,
	}}

	id, err := s.st.Create(ctx, s.collection, item.Fields())
	if err != nil {
		return "", fmt.Errorf("create error: %w", err)
	}

	s.log.Info(ctx, "equipment created", "id", id, "nombre", item.Name)
	return id, nil
}

func (s *Service) update(ctx context.Context, actor *auth.User, item models.Item) error {
	doc, err := s.st.Get(ctx, s.collection, item.ID)
	if err != nil {
		return fmt.Errorf("read before update error: %w", err)
	}
	current := models.FromDocument(doc)

	if item.Status != current.Status &&
		(item.Status == models.StatusDecommissioned || current.Status == models.StatusDecommissioned) {
		return ErrStatusLocked
	}

	changes := models.Diff(current, item)
	if len(changes) == 0 {
		return nil
	}

	patch := models.Patch(changes, item)
	patch[models.FieldHistory] = append(current.History, models.HistoryEntry{
		Timestamp: s.now(),
		User:      actorName(actor),
		Action:    models.ActionUpdated,
		Changes:   changes,
	})

	if err := s.st.Update(ctx, s.collection, item.ID, patch); err != nil {
		return fmt.Errorf("update error: %w", err)
	}

	s.log.Info(ctx, "equipment updated", "id", item.ID, "fields", len(changes))
	return nil
}

// Decommission soft-deletes the item: status, decommission date, reason and
// the history entry land in one write.
func (s *Service) Decommission(ctx context.Context, actor *auth.User, id, reason string) error {
	if actor == nil {
		return ErrNoActor
	}

	doc, err := s.st.Get(ctx, s.collection, id)
	if err != nil {
		return fmt.Errorf("read before decommission error: %w", err)
	}
	current := models.FromDocument(doc)
	if current.Decommissioned() {
		return ErrAlreadyDecommissioned
	}

	now := s.now()
	entry := models.HistoryEntry{
		Timestamp: now,
		User:      actorName(actor),
		Action:    models.ActionDecommissioned,
		Changes: []models.FieldChange{
			{Field: models.FieldStatus, Old: string(current.Status), New: string(models.StatusDecommissioned)},
			{Field: models.FieldDecommissionReason, Old: "", New: reason},
		},
	}

	patch := map[string]any{
		models.FieldStatus:             string(models.StatusDecommissioned),
		models.FieldDecommissionDate:   now,
		models.FieldDecommissionReason: reason,
		models.FieldHistory:            append(current.History, entry),
	}

	if err := s.st.Update(ctx, s.collection, id, patch); err != nil {
		return fmt.Errorf("decommission error: %w", err)
	}

	s.log.Info(ctx, "equipment decommissioned", "id", id)
	return nil
}

// Delete removes the record permanently. Unlike decommissioning this is
// irreversible.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.st.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	s.log.Info(ctx, "equipment deleted", "id", id)
	return nil
}

func actorName(actor *auth.User) string {
	if actor.Email != "" {
		return actor.Email
	}
	return actor.ID
}
