package models

import (
	"github.com/shopspring/decimal"

	"capital-tracker/internal/apperr"
)

const maxNoteLength = 300

// appendAmountErrors enforces the shared money rules: strictly positive,
// at most two fractional digits.
func appendAmountErrors(fields []apperr.FieldError, name string, amount decimal.Decimal) []apperr.FieldError {
	if !amount.IsPositive() {
		return append(fields, apperr.FieldError{Field: name, Message: "amount must be > 0"})
	}
	if amount.Exponent() < -2 {
		return append(fields, apperr.FieldError{Field: name, Message: "amount max 2 decimals"})
	}
	return fields
}
