package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avelasco-dev/inventario/internal/mirror"
	"github.com/avelasco-dev/inventario/internal/models"
)

var errNotLoggedIn = errors.New("not logged in")

// requireMirror fetches the session mirror or tells the user to log in.
func (a *App) requireMirror() (*mirror.Mirror, error) {
	_, m := a.session()
	if m == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil, errNotLoggedIn
	}
	return m, nil
}

func (a *App) List(ctx context.Context) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}
	a.printItems(m.Items(), m)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}
	s := m.Stats()
	fmt.Fprintf(a.out, "Activos: %d  Disponible: %d  En Uso: %d  De Baja: %d\n",
		s.Active, s.Available, s.InUse, s.Decommissioned)
	return nil
}

// Filter prompts for the three criteria at once; empty answers mean the
// wildcard.
func (a *App) Filter(ctx context.Context) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}

	category, err := GetTextWithDefault(a.reader,
		"Category ("+strings.Join(m.Categories(), ", ")+")", mirror.CategoryAll, a.out)
	if err != nil {
		return err
	}
	group, err := GetTextWithDefault(a.reader,
		"Status (Todos, Activos, Disponible, En Uso, En Mantenimiento, De Baja)",
		mirror.StatusGroupAll, a.out)
	if err != nil {
		return err
	}
	search, err := GetSimpleText(a.reader, "Search text (empty for all)", a.out)
	if err != nil {
		return err
	}

	c := mirror.Criteria{Category: category, StatusGroup: group, Search: search}
	a.printItems(m.Filter(c), m)
	return nil
}

func (a *App) Estado(ctx context.Context, group string) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}
	c := mirror.Criteria{Category: mirror.CategoryAll, StatusGroup: group}
	a.printItems(m.Filter(c), m)
	return nil
}

func (a *App) Buscar(ctx context.Context, term string) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}
	c := mirror.Criteria{Category: mirror.CategoryAll, StatusGroup: mirror.StatusGroupAll, Search: term}
	a.printItems(m.Filter(c), m)
	return nil
}

func (a *App) printItems(items []models.Item, m *mirror.Mirror) {
	if m.Loading() {
		fmt.Fprintln(a.out, "(still loading...)")
		return
	}
	if err := m.Err(); err != nil {
		fmt.Fprintf(a.out, "(connection lost, showing last known state: %v)\n", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No equipment found.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(a.out, "%-36s  %-30s  %-15s  %-16s  %s\n",
			it.ID, it.Name, it.Category, it.Status, it.InventoryNumber)
	}
	fmt.Fprintf(a.out, "%d item(s)\n", len(items))
}
