package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the wire format for transaction dates
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate        = errors.New("transaction date must be in YYYY-MM-DD format")
	ErrEmptyTransaction   = errors.New("transaction must contain at least one amount")
	ErrTotalMismatch      = errors.New("transaction totals do not match category amounts")
	ErrMissingTransaction = errors.New("transaction cannot be nil")
)

// Transaction is one dated entry aggregating all income and expense rows the
// user recorded for that date. Documents are fully rewritten on edit; the
// totals are always the sums of their respective sides.
type Transaction struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	Date         string       `gorm:"type:varchar(10);not null;index" json:"date"`
	Incomes      CategorySide `gorm:"type:text" json:"incomes"`
	Expenses     CategorySide `gorm:"type:text" json:"expenses"`
	TotalIncome  float64      `gorm:"not null" json:"totalIncome"`
	TotalExpense float64      `gorm:"not null" json:"totalExpense"`
	CreatedAt    time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updatedAt"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}

	if t.TotalIncome+t.TotalExpense <= 0 {
		return ErrEmptyTransaction
	}

	if !totalsMatch(t.TotalIncome, t.Incomes) || !totalsMatch(t.TotalExpense, t.Expenses) {
		return ErrTotalMismatch
	}

	return nil
}

// Net returns the net balance of the transaction
func (t *Transaction) Net() float64 {
	return t.TotalIncome - t.TotalExpense
}

// Day returns the day of month of the transaction date, used as the trend
// chart label. Returns 0 for an unparseable date.
func (t *Transaction) Day() int {
	parsed, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return 0
	}
	return parsed.Day()
}

// InRange reports whether the transaction date falls inside the inclusive
// range. ISO dates compare correctly as strings.
func (t *Transaction) InRange(start, end string) bool {
	return t.Date >= start && t.Date <= end
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

func totalsMatch(total float64, side CategorySide) bool {
	return math.Abs(total-side.Total()) < 1e-6
}
