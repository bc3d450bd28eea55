package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"capital-tracker/internal/apperr"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DefaultSource tags entries created without an explicit origin.
const DefaultSource = "manual"

type Transaction struct {
	ID               string          `json:"id"`
	UserID           string          `json:"-"`
	Type             TransactionType `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"`
	Date             time.Time       `json:"date"`
	Note             *string         `json:"note"`
	Source           string          `json:"source"`
	RemainingCapital decimal.Decimal `json:"remainingCapital"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type CreateTransactionRequest struct {
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     *string         `json:"note"`
	Source   string          `json:"source"`
}

func (r *CreateTransactionRequest) Validate() *apperr.ValidationError {
	var fields []apperr.FieldError

	if !validTransactionType(r.Type) {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "type must be expense|income"})
	}
	fields = appendAmountErrors(fields, "amount", r.Amount)
	if strings.TrimSpace(r.Category) == "" {
		fields = append(fields, apperr.FieldError{Field: "category", Message: "category required"})
	}
	if strings.TrimSpace(r.Date) == "" {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "date required"})
	}
	if r.Note != nil && len(*r.Note) > maxNoteLength {
		fields = append(fields, apperr.FieldError{Field: "note", Message: "note <= 300 chars"})
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// PatchTransactionRequest carries a partial update; nil fields retain the
// stored values.
type PatchTransactionRequest struct {
	Type     *string          `json:"type"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category"`
	Date     *string          `json:"date"`
	Note     *string          `json:"note"`
	Source   *string          `json:"source"`
}

func (r *PatchTransactionRequest) Validate() *apperr.ValidationError {
	var fields []apperr.FieldError

	if r.Type != nil && !validTransactionType(*r.Type) {
		fields = append(fields, apperr.FieldError{Field: "type", Message: "type must be expense|income"})
	}
	if r.Amount != nil {
		fields = appendAmountErrors(fields, "amount", *r.Amount)
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		fields = append(fields, apperr.FieldError{Field: "category", Message: "category must not be empty"})
	}
	if r.Note != nil && len(*r.Note) > maxNoteLength {
		fields = append(fields, apperr.FieldError{Field: "note", Message: "note <= 300 chars"})
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// ListParams are the raw query parameters for listing the ledger. Dates and
// the cursor stay unparsed here; the query engine owns their interpretation.
type ListParams struct {
	Type     string
	Category string
	From     string
	To       string
	Cursor   string
	Limit    int
}

func (p *ListParams) Validate() *apperr.ValidationError {
	if p.Type != "" && !validTransactionType(p.Type) {
		return &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: "type", Message: "type must be expense|income"},
		}}
	}
	return nil
}

type ListResult struct {
	Items      []*Transaction `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

type DeleteResult struct {
	Status           string          `json:"status"`
	ID               string          `json:"id"`
	ReversedAmount   decimal.Decimal `json:"reversedAmount"`
	RemainingCapital decimal.Decimal `json:"remainingCapital"`
}

func validTransactionType(t string) bool {
	return t == string(TransactionTypeIncome) || t == string(TransactionTypeExpense)
}
