package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryForm(t *testing.T) {
	form := NewEntryForm(IncomeCategories)

	assert.Len(t, form, len(IncomeCategories))
	for _, category := range IncomeCategories {
		rows := form[category]
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].ID)
		assert.Empty(t, rows[0].Value)
		assert.Empty(t, rows[0].Label)
	}
}

func TestEntryForm_AddRow(t *testing.T) {
	form := NewEntryForm([]string{"Others"})

	form.AddRow("Others")
	form.AddRow("Others")

	rows := form["Others"]
	require.Len(t, rows, 3)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
	assert.NotEqual(t, rows[1].ID, rows[2].ID)
}

func TestEntryForm_RemoveRow(t *testing.T) {
	form := NewEntryForm([]string{"Rent"})
	form.AddRow("Rent")

	first := form["Rent"][0].ID
	second := form["Rent"][1].ID

	form.RemoveRow("Rent", first)
	require.Len(t, form["Rent"], 1)
	assert.Equal(t, second, form["Rent"][0].ID)
}

func TestEntryForm_RemoveRow_KeepsLastRow(t *testing.T) {
	form := NewEntryForm([]string{"Rent"})
	only := form["Rent"][0].ID

	form.RemoveRow("Rent", only)

	require.Len(t, form["Rent"], 1)
	assert.Equal(t, only, form["Rent"][0].ID)
}

func TestEntryForm_SetField(t *testing.T) {
	form := NewEntryForm([]string{"Salary"})
	rowID := form["Salary"][0].ID

	form.SetField("Salary", rowID, RowFieldValue, "50000")
	form.SetField("Salary", rowID, RowFieldLabel, "August salary")

	row := form["Salary"][0]
	assert.Equal(t, "50000", row.Value)
	assert.Equal(t, "August salary", row.Label)
}

func TestEntryForm_SetField_IgnoresUnknownRowAndField(t *testing.T) {
	form := NewEntryForm([]string{"Salary"})
	rowID := form["Salary"][0].ID

	form.SetField("Salary", "no-such-row", RowFieldValue, "100")
	form.SetField("Salary", rowID, "color", "red")

	row := form["Salary"][0]
	assert.Empty(t, row.Value)
	assert.Empty(t, row.Label)
}
