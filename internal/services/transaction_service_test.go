package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capital-tracker/internal/apperr"
	"capital-tracker/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedEffect(t *testing.T) {
	assert.True(t, signedEffect(models.TransactionTypeIncome, dec("250.00")).Equal(dec("250.00")))
	assert.True(t, signedEffect(models.TransactionTypeExpense, dec("250.00")).Equal(dec("-250.00")))
}

func TestApplyEffectClampsAtZero(t *testing.T) {
	assert.True(t, applyEffect(dec("100"), dec("-300")).Equal(decimal.Zero))
	assert.True(t, applyEffect(dec("100"), dec("-100")).Equal(decimal.Zero))
	assert.True(t, applyEffect(dec("100"), dec("-99.99")).Equal(dec("0.01")))
	assert.True(t, applyEffect(dec("100"), dec("50.50")).Equal(dec("150.50")))
}

// Mirrors the full round: top-up 1000, expense 300, raise it to 500, delete.
func TestLedgerArithmeticSequence(t *testing.T) {
	balance := dec("1000")

	// expense of 300 brings the capital to 700
	effect := signedEffect(models.TransactionTypeExpense, dec("300"))
	balance = applyEffect(balance, effect)
	assert.True(t, balance.Equal(dec("700")))

	// amount patched from 300 to 500: delta is -200, capital 500
	delta := signedEffect(models.TransactionTypeExpense, dec("500")).
		Sub(signedEffect(models.TransactionTypeExpense, dec("300")))
	assert.True(t, delta.Equal(dec("-200")))
	balance = applyEffect(balance, delta)
	assert.True(t, balance.Equal(dec("500")))

	// deleting the entry reverses its stored effect, back to 1000
	reversed := signedEffect(models.TransactionTypeExpense, dec("500")).Neg()
	balance = applyEffect(balance, reversed)
	assert.True(t, balance.Equal(dec("1000")))
}

func TestTypeFlipDelta(t *testing.T) {
	// 100 expense turned into 100 income swings the capital by +200
	delta := signedEffect(models.TransactionTypeIncome, dec("100")).
		Sub(signedEffect(models.TransactionTypeExpense, dec("100")))
	assert.True(t, delta.Equal(dec("200")))
}

func baseTransaction() *models.Transaction {
	note := "groceries for the week"
	return &models.Transaction{
		ID:       "tx-1",
		UserID:   "user-1",
		Type:     models.TransactionTypeExpense,
		Amount:   dec("300.00"),
		Category: "food",
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Note:     &note,
		Source:   "manual",
	}
}

func TestMergeTransactionRetainsUnsetFields(t *testing.T) {
	old := baseTransaction()

	merged, err := mergeTransaction(old, &models.PatchTransactionRequest{})

	require.NoError(t, err)
	assert.Equal(t, old.Type, merged.Type)
	assert.True(t, merged.Amount.Equal(old.Amount))
	assert.Equal(t, old.Category, merged.Category)
	assert.True(t, merged.Date.Equal(old.Date))
	require.NotNil(t, merged.Note)
	assert.Equal(t, *old.Note, *merged.Note)
	assert.Equal(t, "manual", merged.Source)
}

func TestMergeTransactionAppliesPartialFields(t *testing.T) {
	old := baseTransaction()
	newType := "income"
	newAmount := dec("500")
	newCategory := "  salary  "
	newDate := "2024-02-15"

	merged, err := mergeTransaction(old, &models.PatchTransactionRequest{
		Type:     &newType,
		Amount:   &newAmount,
		Category: &newCategory,
		Date:     &newDate,
	})

	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeIncome, merged.Type)
	assert.True(t, merged.Amount.Equal(dec("500")))
	assert.Equal(t, "salary", merged.Category)
	assert.True(t, merged.Date.Equal(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
	// untouched fields survive
	require.NotNil(t, merged.Note)
	assert.Equal(t, *old.Note, *merged.Note)
}

func TestMergeTransactionClearsNote(t *testing.T) {
	old := baseTransaction()
	empty := ""

	merged, err := mergeTransaction(old, &models.PatchTransactionRequest{Note: &empty})

	require.NoError(t, err)
	assert.Nil(t, merged.Note)
}

func TestMergeTransactionInvalidDate(t *testing.T) {
	old := baseTransaction()
	bad := "soon"

	_, err := mergeTransaction(old, &models.PatchTransactionRequest{Date: &bad})

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DATE", domainErr.Code)
	assert.Equal(t, 422, domainErr.Status)
}

func TestMergeTransactionDefaultsEmptySource(t *testing.T) {
	old := baseTransaction()
	old.Source = ""

	merged, err := mergeTransaction(old, &models.PatchTransactionRequest{})

	require.NoError(t, err)
	assert.Equal(t, models.DefaultSource, merged.Source)
}
