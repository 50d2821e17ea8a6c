package models

import "github.com/google/uuid"

// Row field names accepted by EntryForm.SetField
const (
	RowFieldValue = "value"
	RowFieldLabel = "label"
)

// EntryRow is one editable amount entry within a category while a transaction
// is being composed. Value holds raw text and may be empty or non-numeric;
// validation happens when the transaction is built, not here. The ID is only
// stable for the lifetime of the edit session and is never persisted.
type EntryRow struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// EntryForm is the editable state for one side of a transaction entry: a
// mapping from fixed category name to its ordered list of rows. Every
// category always keeps at least one row so the form has an input surface.
type EntryForm map[string][]EntryRow

// NewEntryForm creates a form with a single empty row per category.
func NewEntryForm(categories []string) EntryForm {
	form := make(EntryForm, len(categories))
	for _, category := range categories {
		form[category] = []EntryRow{newEmptyRow()}
	}
	return form
}

// AddRow appends a fresh empty row to the category's list.
func (f EntryForm) AddRow(category string) {
	f[category] = append(f[category], newEmptyRow())
}

// RemoveRow removes the row with the given id. Removing the last remaining
// row of a category is a no-op.
func (f EntryForm) RemoveRow(category, rowID string) {
	rows := f[category]
	if len(rows) <= 1 {
		return
	}

	kept := make([]EntryRow, 0, len(rows)-1)
	for _, row := range rows {
		if row.ID != rowID {
			kept = append(kept, row)
		}
	}
	f[category] = kept
}

// SetField updates the value or label of the matching row. Unknown rows and
// unknown fields are ignored.
func (f EntryForm) SetField(category, rowID, field, value string) {
	rows := f[category]
	for i := range rows {
		if rows[i].ID != rowID {
			continue
		}
		switch field {
		case RowFieldValue:
			rows[i].Value = value
		case RowFieldLabel:
			rows[i].Label = value
		}
		return
	}
}

func newEmptyRow() EntryRow {
	return EntryRow{ID: uuid.NewString()}
}
