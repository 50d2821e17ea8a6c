package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// StoredAmount is the persisted representation of one entry row. Current
// documents store it as an object {amount, label}; legacy documents may store
// a bare number instead. Decoding accepts both shapes, encoding always emits
// the object form. Every reader must go through NormalizedAmount/LabelOr
// rather than branching on shape ad hoc.
type StoredAmount struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
}

// UnmarshalJSON accepts both the current object shape and the legacy bare
// number shape. Anything unreadable decodes to a zero amount.
func (a *StoredAmount) UnmarshalJSON(data []byte) error {
	type storedAmount StoredAmount
	var obj storedAmount
	if err := json.Unmarshal(data, &obj); err == nil {
		*a = StoredAmount(obj)
		return nil
	}

	var legacy float64
	if err := json.Unmarshal(data, &legacy); err == nil {
		*a = StoredAmount{Amount: legacy}
		return nil
	}

	*a = StoredAmount{}
	return nil
}

// NormalizedAmount returns the amount as a non-negative number. Negative or
// non-numeric stored values are treated as 0.
func (a *StoredAmount) NormalizedAmount() float64 {
	if a == nil {
		return 0
	}
	if math.IsNaN(a.Amount) || math.IsInf(a.Amount, 0) || a.Amount < 0 {
		return 0
	}
	return a.Amount
}

// LabelOr returns the stored label, or fallback when no usable label exists.
func (a *StoredAmount) LabelOr(fallback string) string {
	if a == nil || a.Label == "" {
		return fallback
	}
	return a.Label
}

// AmountList is the list of amounts recorded under one category. Legacy
// documents stored a single bare value instead of an array; decoding lifts
// that into a one-element list so downstream code only ever sees arrays.
type AmountList []StoredAmount

// UnmarshalJSON accepts an array of stored amounts or a single legacy value.
func (l *AmountList) UnmarshalJSON(data []byte) error {
	var list []StoredAmount
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single StoredAmount
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = AmountList{single}
	return nil
}

// Total sums the list through the normalizer.
func (l AmountList) Total() float64 {
	var total float64
	for i := range l {
		total += l[i].NormalizedAmount()
	}
	return total
}

// CategorySide is one side of a transaction document: a mapping from category
// name to the amounts recorded under it. A key is present only when it has at
// least one row with a positive amount.
type CategorySide map[string]AmountList

// Total sums all amounts on the side through the normalizer.
func (s CategorySide) Total() float64 {
	var total float64
	for _, amounts := range s {
		total += amounts.Total()
	}
	return total
}

// Value implements driver.Valuer, storing the side as a JSON text column
func (s CategorySide) Value() (driver.Value, error) {
	bytes, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	// Return string for SQLite compatibility
	return string(bytes), nil
}

// Scan implements sql.Scanner
func (s *CategorySide) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CategorySide", value)
	}

	if len(bytes) == 0 {
		*s = nil
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// MarshalJSON keeps an empty side as {} rather than null so the document
// shape stays stable for legacy readers.
func (s CategorySide) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]AmountList(s))
}
