// Package models defines the equipment record, its remote field schema,
// and the field-level diffing used to build history entries.
package models

import (
	"encoding/json"
	"time"

	"github.com/avelasco-dev/inventario/internal/store"
)

// Status enumerates the lifecycle states of a piece of equipment.
// The values are the literal strings stored remotely.
type Status string

const (
	StatusAvailable      Status = "Disponible"
	StatusInUse          Status = "En Uso"
	StatusMaintenance    Status = "En Mantenimiento"
	StatusDecommissioned Status = "De Baja"
)

// EditableStatuses are the statuses an operator may set directly on a
// record. De Baja is excluded: it is only reachable through a decommission.
var EditableStatuses = []Status{StatusAvailable, StatusInUse, StatusMaintenance}

// Editable reports whether the status may be assigned through create/edit.
func (s Status) Editable() bool {
	for _, e := range EditableStatuses {
		if s == e {
			return true
		}
	}
	return false
}

// Remote field keys. The schema is a given: renaming any of these would
// break every document already in the store.
const (
	FieldName               = "nombre"
	FieldCategory           = "categoria"
	FieldSerialNumber       = "numeroSerial"
	FieldInventoryNumber    = "numeroInventario"
	FieldStatus             = "estado"
	FieldIntakeDate         = "fechaIngreso"
	FieldNotes              = "observaciones"
	FieldDecommissionDate   = "fecha_baja"
	FieldDecommissionReason = "motivo_baja"
	FieldHistory            = "historial"
	FieldCreatedAt          = "createdAt"
	FieldAddedBy            = "addedBy"
)

// History action labels.
const (
	ActionCreated        = "creado"
	ActionUpdated        = "modificado"
	ActionDecommissioned = "baja"
)

// Categories is the fixed category set offered when creating equipment.
var Categories = []string{
	"Periféricos", "Monitores", "Laptops", "CPU", "Cámaras", "Luces", "Audio", "Otros",
}

// FieldChange records one field transition inside a history entry.
type FieldChange struct {
	Field string `json:"campo"`
	Old   string `json:"anterior"`
	New   string `json:"nuevo"`
}

// HistoryEntry is one element of a record's append-only history log.
type HistoryEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"usuario"`
	Action    string        `json:"accion"`
	Changes   []FieldChange `json:"cambios,omitempty"`
}

// Item is one tracked physical asset.
type Item struct {
	ID                 string
	Name               string
	Category           string
	SerialNumber       string
	InventoryNumber    string
	Status             Status
	IntakeDate         time.Time
	Notes              string
	DecommissionDate   time.Time
	DecommissionReason string
	CreatedAt          time.Time
	AddedBy            string
	History            []HistoryEntry
}

// Decommissioned reports whether the item has been soft-deleted.
func (i Item) Decommissioned() bool {
	return i.Status == StatusDecommissioned
}

// Fields returns the full remote field map for the item, excluding the id.
func (i Item) Fields() map[string]any {
	f := map[string]any{
		FieldName:            i.Name,
		FieldCategory:        i.Category,
		FieldSerialNumber:    i.SerialNumber,
		FieldInventoryNumber: i.InventoryNumber,
		FieldStatus:          string(i.Status),
		FieldIntakeDate:      i.IntakeDate,
		FieldNotes:           i.Notes,
		FieldCreatedAt:       i.CreatedAt,
		FieldAddedBy:         i.AddedBy,
		FieldHistory:         i.History,
	}
	if i.Status == StatusDecommissioned {
		f[FieldDecommissionDate] = i.DecommissionDate
		f[FieldDecommissionReason] = i.DecommissionReason
	}
	return f
}

// FromDocument materializes an Item from a remote document. Unknown or
// malformed fields degrade to zero values rather than failing the snapshot.
func FromDocument(doc store.Document) Item {
	f := doc.Fields
	return Item{
		ID:                 doc.ID,
		Name:               getString(f, FieldName),
		Category:           getString(f, FieldCategory),
		SerialNumber:       getString(f, FieldSerialNumber),
		InventoryNumber:    getString(f, FieldInventoryNumber),
		Status:             Status(getString(f, FieldStatus)),
		IntakeDate:         getTime(f, FieldIntakeDate),
		Notes:              getString(f, FieldNotes),
		DecommissionDate:   getTime(f, FieldDecommissionDate),
		DecommissionReason: getString(f, FieldDecommissionReason),
		CreatedAt:          getTime(f, FieldCreatedAt),
		AddedBy:            getString(f, FieldAddedBy),
		History:            historyFrom(f[FieldHistory]),
	}
}

func getString(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

func getTime(f map[string]any, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// historyFrom coerces the stored history value, which arrives either as
// []HistoryEntry (in-process) or as generic JSON ([]any of maps), into a
// typed slice by round-tripping through JSON.
func historyFrom(v any) []HistoryEntry {
	if v == nil {
		return nil
	}
	if h, ok := v.([]HistoryEntry); ok {
		return h
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var h []HistoryEntry
	if err := json.Unmarshal(data, &h); err != nil {
		return nil
	}
	return h
}
