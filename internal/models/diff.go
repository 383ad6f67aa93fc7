package models

import "time"

// dateLayout renders the intake date in history entries the way the
// dashboard shows it.
const dateLayout = "2006-01-02"

// Diff compares the editable fields of two item versions and returns one
// FieldChange per field whose value differs. The history field itself is
// never part of the comparison. Temporal values use time.Time.Equal;
// generic equality on them would false-negative on equal instants with
// different wall-clock representations.
func Diff(old, updated Item) []FieldChange {
	var changes []FieldChange

	add := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, FieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}

	add(FieldName, old.Name, updated.Name)
	add(FieldCategory, old.Category, updated.Category)
	add(FieldSerialNumber, old.SerialNumber, updated.SerialNumber)
	add(FieldInventoryNumber, old.InventoryNumber, updated.InventoryNumber)
	add(FieldStatus, string(old.Status), string(updated.Status))
	add(FieldNotes, old.Notes, updated.Notes)

	if !old.IntakeDate.Equal(updated.IntakeDate) {
		changes = append(changes, FieldChange{
			Field: FieldIntakeDate,
			Old:   formatDate(old.IntakeDate),
			New:   formatDate(updated.IntakeDate),
		})
	}

	return changes
}

// Patch builds the remote update payload carrying exactly the changed
// fields, taking the new values from updated.
func Patch(changes []FieldChange, updated Item) map[string]any {
	patch := make(map[string]any, len(changes))
	for _, c := range changes {
		switch c.Field {
		case FieldName:
			patch[FieldName] = updated.Name
		case FieldCategory:
			patch[FieldCategory] = updated.Category
		case FieldSerialNumber:
			patch[FieldSerialNumber] = updated.SerialNumber
		case FieldInventoryNumber:
			patch[FieldInventoryNumber] = updated.InventoryNumber
		case FieldStatus:
			patch[FieldStatus] = string(updated.Status)
		case FieldNotes:
			patch[FieldNotes] = updated.Notes
		case FieldIntakeDate:
			patch[FieldIntakeDate] = updated.IntakeDate
		}
	}
	return patch
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
