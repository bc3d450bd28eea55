package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"capital-tracker/internal/apperr"
)

type Periodicity string

const (
	PeriodicityMonthly  Periodicity = "monthly"
	PeriodicityBiweekly Periodicity = "biweekly"
	PeriodicityWeekly   Periodicity = "weekly"
)

type Capital struct {
	UserID      string          `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	Periodicity Periodicity     `json:"periodicity"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CapitalView is the read shape; amount and periodicity are null until the
// capital has been configured.
type CapitalView struct {
	Amount      *decimal.Decimal `json:"amount"`
	Periodicity *Periodicity     `json:"periodicity"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
	Exists      bool             `json:"exists"`
}

type TopUpRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Periodicity string          `json:"periodicity"`
}

func (r *TopUpRequest) Validate() *apperr.ValidationError {
	var fields []apperr.FieldError

	fields = appendAmountErrors(fields, "amount", r.Amount)
	if r.Periodicity != "" && !validPeriodicity(r.Periodicity) {
		fields = append(fields, apperr.FieldError{
			Field:   "periodicity",
			Message: "periodicity must be one of: monthly, biweekly, weekly",
		})
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// NormalizedPeriodicity lower-cases the supplied value; empty stays empty.
func (r *TopUpRequest) NormalizedPeriodicity() Periodicity {
	return Periodicity(strings.ToLower(r.Periodicity))
}

type TopUpMeta struct {
	PreviousAmount decimal.Decimal `json:"previousAmount"`
	DeltaAdded     decimal.Decimal `json:"deltaAdded"`
	Created        bool            `json:"created"`
}

type TopUpResult struct {
	Amount      decimal.Decimal `json:"amount"`
	Periodicity Periodicity     `json:"periodicity"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Meta        TopUpMeta       `json:"meta"`
}

type ResetRequest struct {
	Confirm string `json:"confirm"`
}

type ResetResult struct {
	Status              string    `json:"status"`
	CapitalExisted      bool      `json:"capitalExisted"`
	TransactionsDeleted int64     `json:"transactionsDeleted"`
	DeletedAt           time.Time `json:"deletedAt"`
}

func validPeriodicity(p string) bool {
	switch Periodicity(strings.ToLower(p)) {
	case PeriodicityMonthly, PeriodicityBiweekly, PeriodicityWeekly:
		return true
	}
	return false
}
