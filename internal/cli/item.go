package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avelasco-dev/inventario/internal/auth"
	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/inventory"
	"github.com/avelasco-dev/inventario/internal/models"
)

const dateLayout = "2006-01-02"

// statusChoices renders the statuses offered by the add/edit prompts.
// Decommissioning has its own command, so De Baja is never on offer.
func statusChoices() string {
	names := make([]string, len(models.EditableStatuses))
	for i, s := range models.EditableStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// requireEditor fetches the session user and rejects read-only roles.
func (a *App) requireEditor() (*auth.User, error) {
	user, _ := a.session()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil, errNotLoggedIn
	}
	if user.Role == auth.RoleReader {
		fmt.Fprintln(a.out, "Your role does not allow modifications.")
		return nil, fmt.Errorf("role %s: %w", user.Role, common.ErrorUnauthorized)
	}
	return user, nil
}

func (a *App) Add(ctx context.Context) error {
	user, err := a.requireEditor()
	if err != nil {
		return err
	}

	var item models.Item
	if item.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if item.Category, err = GetTextWithDefault(a.reader,
		"Category ("+strings.Join(models.Categories, ", ")+")", "Otros", a.out); err != nil {
		return err
	}
	if item.SerialNumber, err = GetSimpleText(a.reader, "Serial number", a.out); err != nil {
		return err
	}
	if item.InventoryNumber, err = GetSimpleText(a.reader, "Inventory number", a.out); err != nil {
		return err
	}
	status, err := GetTextWithDefault(a.reader, "Status ("+statusChoices()+")",
		string(models.StatusAvailable), a.out)
	if err != nil {
		return err
	}
	item.Status = models.Status(status)
	if !item.Status.Editable() {
		fmt.Fprintf(a.out, "Invalid status: %s\n", status)
		return errors.New("invalid status")
	}
	intake, err := GetTextWithDefault(a.reader, "Intake date (YYYY-MM-DD)",
		time.Now().Format(dateLayout), a.out)
	if err != nil {
		return err
	}
	if item.IntakeDate, err = time.Parse(dateLayout, intake); err != nil {
		fmt.Fprintf(a.out, "Invalid date: %v\n", err)
		return err
	}
	if item.Notes, err = GetSimpleText(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	id, err := a.service.Save(ctx, user, item)
	if err != nil {
		fmt.Fprintf(a.out, "Save failed: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", id)
	return nil
}

// Edit prompts per field; an empty answer keeps the current value.
func (a *App) Edit(ctx context.Context, id string) error {
	user, err := a.requireEditor()
	if err != nil {
		return err
	}
	item, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}
	if item.Decommissioned() {
		fmt.Fprintln(a.out, "Record is decommissioned and can no longer be edited.")
		return errors.New("record decommissioned")
	}

	if item.Name, err = GetTextWithDefault(a.reader, "Name", item.Name, a.out); err != nil {
		return err
	}
	if item.Category, err = GetTextWithDefault(a.reader, "Category", item.Category, a.out); err != nil {
		return err
	}
	if item.SerialNumber, err = GetTextWithDefault(a.reader, "Serial number", item.SerialNumber, a.out); err != nil {
		return err
	}
	if item.InventoryNumber, err = GetTextWithDefault(a.reader, "Inventory number", item.InventoryNumber, a.out); err != nil {
		return err
	}
	status, err := GetTextWithDefault(a.reader, "Status ("+statusChoices()+")",
		string(item.Status), a.out)
	if err != nil {
		return err
	}
	item.Status = models.Status(status)
	if !item.Status.Editable() {
		fmt.Fprintf(a.out, "Invalid status: %s\n", status)
		return errors.New("invalid status")
	}
	if item.Notes, err = GetTextWithDefault(a.reader, "Notes", item.Notes, a.out); err != nil {
		return err
	}

	if _, err := a.service.Save(ctx, user, item); err != nil {
		fmt.Fprintf(a.out, "Save failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Saved. Changes will show up with the next snapshot.")
	return nil
}

func (a *App) Baja(ctx context.Context, id string) error {
	user, err := a.requireEditor()
	if err != nil {
		return err
	}

	reason, err := GetSimpleText(a.reader, "Reason for decommission", a.out)
	if err != nil {
		return err
	}
	if err := a.service.Decommission(ctx, user, id, reason); err != nil {
		if errors.Is(err, inventory.ErrAlreadyDecommissioned) {
			fmt.Fprintln(a.out, "Already decommissioned.")
		} else {
			fmt.Fprintf(a.out, "Decommission failed: %v\n", err)
		}
		return err
	}
	fmt.Fprintln(a.out, "Decommissioned.")
	return nil
}

// Del removes the record permanently. Restricted to administrators.
func (a *App) Del(ctx context.Context, id string) error {
	user, _ := a.session()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return errNotLoggedIn
	}
	if user.Role != auth.RoleAdmin {
		fmt.Fprintln(a.out, "Only administrators can delete records.")
		return fmt.Errorf("role %s: %w", user.Role, common.ErrorUnauthorized)
	}

	confirm, err := GetSimpleText(a.reader, "Type 'yes' to permanently delete "+id, a.out)
	if err != nil {
		return err
	}
	if confirm != "yes" {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}
	if err := a.service.Delete(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Delete failed: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Hist(ctx context.Context, id string) error {
	item, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}
	if len(item.History) == 0 {
		fmt.Fprintln(a.out, "No history.")
		return nil
	}
	for _, h := range item.History {
		fmt.Fprintf(a.out, "%s  %-12s  %s\n",
			h.Timestamp.Format(time.RFC3339), h.Action, h.User)
		for _, c := range h.Changes {
			fmt.Fprintf(a.out, "    %s: %q -> %q\n", c.Field, c.Old, c.New)
		}
	}
	return nil
}

// lookup prefers the mirror; when the mirror does not know the id yet it
// falls back to a direct read so fresh writes stay addressable.
func (a *App) lookup(ctx context.Context, id string) (models.Item, error) {
	_, m := a.session()
	if m == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return models.Item{}, errNotLoggedIn
	}
	if item, ok := m.Get(id); ok {
		return item, nil
	}

	doc, err := a.store.Get(ctx, a.service.Collection(), id)
	if err != nil {
		fmt.Fprintf(a.out, "Not found: %s\n", id)
		return models.Item{}, err
	}
	item := models.FromDocument(doc)
	return item, nil
}
