package mirror

import (
	"sort"
	"strings"

	"github.com/avelasco-dev/inventario/internal/models"
)

// Filter wildcards and the active status group, as the dashboard labels them.
const (
	CategoryAll       = "Todos"
	StatusGroupAll    = "Todos"
	StatusGroupActive = "Activos"
)

// Criteria are the three independent filter predicates. Zero values match
// everything.
type Criteria struct {
	// Category is an exact category or CategoryAll.
	Category string
	// StatusGroup is StatusGroupActive (not decommissioned), an exact
	// status value, or StatusGroupAll.
	StatusGroup string
	// Search matches case-insensitively as a substring against name,
	// serial number and inventory number.
	Search string
}

// Matches reports whether all three predicates hold for the item.
func (c Criteria) Matches(item models.Item) bool {
	if c.Category != "" && c.Category != CategoryAll && item.Category != c.Category {
		return false
	}

	switch c.StatusGroup {
	case "", StatusGroupAll:
	case StatusGroupActive:
		if item.Decommissioned() {
			return false
		}
	default:
		if string(item.Status) != c.StatusGroup {
			return false
		}
	}

	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(item.Name), needle) &&
			!strings.Contains(strings.ToLower(item.SerialNumber), needle) &&
			!strings.Contains(strings.ToLower(item.InventoryNumber), needle) {
			return false
		}
	}

	return true
}

// FilterItems returns the items matching the criteria, preserving order.
func FilterItems(items []models.Item, c Criteria) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if c.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// Stats are the dashboard's aggregate counts, always computed over the full
// mapping, never over a filtered view.
type Stats struct {
	Active         int
	Available      int
	InUse          int
	Decommissioned int
}

// ComputeStats tallies the counts in a single pass.
func ComputeStats(items []models.Item) Stats {
	var s Stats
	for _, item := range items {
		switch item.Status {
		case models.StatusDecommissioned:
			s.Decommissioned++
			continue
		case models.StatusAvailable:
			s.Available++
		case models.StatusInUse:
			s.InUse++
		}
		s.Active++
	}
	return s
}

// CategorySet returns the sorted distinct categories present in items.
func CategorySet(items []models.Item) []string {
	seen := make(map[string]struct{})
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		seen[item.Category] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
