package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fintrack/internal/models"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("income_categories", validateIncomeCategories)
	_ = v.RegisterValidation("expense_categories", validateExpenseCategories)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateISODate validates that a date string is in YYYY-MM-DD format
func validateISODate(fl validator.FieldLevel) bool {
	date := fl.Field().String()
	if date == "" {
		return false
	}

	_, err := time.Parse(models.DateLayout, date)
	return err == nil
}

// validateIncomeCategories validates that every key of an entry map belongs
// to the income category vocabulary
func validateIncomeCategories(fl validator.FieldLevel) bool {
	return validateCategoryKeys(fl, models.IsIncomeCategory)
}

// validateExpenseCategories validates that every key of an entry map belongs
// to the expense category vocabulary
func validateExpenseCategories(fl validator.FieldLevel) bool {
	return validateCategoryKeys(fl, models.IsExpenseCategory)
}

func validateCategoryKeys(fl validator.FieldLevel, allowed func(string) bool) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}

	for _, key := range field.MapKeys() {
		if key.Kind() != reflect.String || !allowed(key.String()) {
			return false
		}
	}
	return true
}
