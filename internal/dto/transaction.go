package dto

import "fintrack/internal/models"

// RowInput is one submitted entry row. Value arrives as raw text and is
// parsed when the transaction is built; rows that do not parse to a positive
// number are dropped.
type RowInput struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SaveTransactionRequest contains the full editable state of one dated entry.
// The same shape serves create and update since documents are rewritten whole.
type SaveTransactionRequest struct {
	Date     string                `json:"date" validate:"required,iso_date"`
	Incomes  map[string][]RowInput `json:"incomes" validate:"income_categories"`
	Expenses map[string][]RowInput `json:"expenses" validate:"expense_categories"`
}

// DateRangeQuery contains the inclusive date range filter for dashboard and
// list queries. Both bounds are optional; missing bounds default to the
// current month.
type DateRangeQuery struct {
	StartDate string `query:"startDate" validate:"omitempty,iso_date"`
	EndDate   string `query:"endDate" validate:"omitempty,iso_date"`
}

// EntryFormResponse is the editable form state reconstructed from a stored
// transaction, one form per side with every category present.
type EntryFormResponse struct {
	Date    string           `json:"date"`
	Income  models.EntryForm `json:"income"`
	Expense models.EntryForm `json:"expense"`
}

// SampleDataRequest controls dev sample data generation
type SampleDataRequest struct {
	Days int `json:"days" validate:"omitempty,min=1,max=365"`
}
