package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"capital-tracker/internal/apperr"
	"capital-tracker/internal/models"
)

// TransactionService coordinates ledger mutations. Every mutating call runs
// one store transaction spanning the capitals row and the transactions row:
// both writes commit together or neither does.
type TransactionService struct {
	db             *sql.DB
	logger         zerolog.Logger
	capitalService *CapitalService
}

func NewTransactionService(db *sql.DB, logger zerolog.Logger, capitalService *CapitalService) *TransactionService {
	return &TransactionService{
		db:             db,
		logger:         logger,
		capitalService: capitalService,
	}
}

// signedEffect is a transaction's contribution to the capital: +amount for
// income, -amount for expense.
func signedEffect(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == models.TransactionTypeIncome {
		return amount
	}
	return amount.Neg()
}

// applyEffect adds an effect to the current capital, clamped at zero.
func applyEffect(current, effect decimal.Decimal) decimal.Decimal {
	next := current.Add(effect)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// mergeTransaction lays the supplied partial fields over the stored entry;
// nil fields retain their prior values. An empty note clears it.
func mergeTransaction(old *models.Transaction, p *models.PatchTransactionRequest) (*models.Transaction, error) {
	merged := *old

	if p.Type != nil {
		merged.Type = models.TransactionType(*p.Type)
	}
	if p.Amount != nil {
		merged.Amount = *p.Amount
	}
	if p.Category != nil {
		merged.Category = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		date, err := parseISODate(*p.Date)
		if err != nil {
			return nil, apperr.InvalidDate()
		}
		merged.Date = date
	}
	if p.Note != nil {
		if trimmed := strings.TrimSpace(*p.Note); trimmed != "" {
			merged.Note = &trimmed
		} else {
			merged.Note = nil
		}
	}
	if p.Source != nil {
		merged.Source = *p.Source
	}
	if merged.Source == "" {
		merged.Source = models.DefaultSource
	}

	return &merged, nil
}

func (s *TransactionService) Create(uid string, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	date, err := parseISODate(req.Date)
	if err != nil {
		return nil, apperr.InvalidDate()
	}

	entry := &models.Transaction{
		ID:       uuid.NewString(),
		UserID:   uid,
		Type:     models.TransactionType(req.Type),
		Amount:   req.Amount,
		Category: strings.TrimSpace(req.Category),
		Date:     date,
		Source:   req.Source,
	}
	if entry.Source == "" {
		entry.Source = models.DefaultSource
	}
	if req.Note != nil {
		if trimmed := strings.TrimSpace(*req.Note); trimmed != "" {
			entry.Note = &trimmed
		}
	}

	mu := s.capitalService.userMutex(uid)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting create transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.capitalService.amountForUpdate(tx, uid)
	if err != nil {
		return nil, err
	}

	next := applyEffect(current, signedEffect(entry.Type, entry.Amount))
	entry.RemainingCapital = next

	_, err = tx.Exec(
		`INSERT INTO transactions (id, user_id, type, amount, category, tx_date, note, source, remaining_capital)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(entry.Type), entry.Amount, entry.Category,
		entry.Date, entry.Note, entry.Source, entry.RemainingCapital,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error inserting transaction")
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err = s.capitalService.setAmountInTx(tx, uid, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing create transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Re-read so the response carries the store-assigned timestamps.
	saved, err := s.GetByID(uid, entry.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", saved.ID).
		Str("user_id", uid).
		Str("type", string(saved.Type)).
		Str("amount", saved.Amount.String()).
		Str("remaining_capital", saved.RemainingCapital.String()).
		Msg("Transaction created")

	return saved, nil
}

func (s *TransactionService) Patch(uid, id string, req *models.PatchTransactionRequest) (*models.Transaction, error) {
	mu := s.capitalService.userMutex(uid)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting patch transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := s.getForUpdate(tx, uid, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeTransaction(old, req)
	if err != nil {
		return nil, err
	}

	current, err := s.capitalService.amountForUpdate(tx, uid)
	if err != nil {
		return nil, err
	}

	delta := signedEffect(merged.Type, merged.Amount).Sub(signedEffect(old.Type, old.Amount))
	next := applyEffect(current, delta)
	merged.RemainingCapital = next

	_, err = tx.Exec(
		`UPDATE transactions
		 SET type = ?, amount = ?, category = ?, tx_date = ?, note = ?, source = ?, remaining_capital = ?
		 WHERE id = ? AND user_id = ?`,
		string(merged.Type), merged.Amount, merged.Category, merged.Date,
		merged.Note, merged.Source, merged.RemainingCapital, id, uid,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", id).Msg("Error updating transaction")
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if err = s.capitalService.setAmountInTx(tx, uid, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing patch transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	saved, err := s.GetByID(uid, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", id).
		Str("user_id", uid).
		Str("delta", delta.String()).
		Str("remaining_capital", next.String()).
		Msg("Transaction patched")

	return saved, nil
}

func (s *TransactionService) Delete(uid, id string) (*models.DeleteResult, error) {
	mu := s.capitalService.userMutex(uid)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting delete transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := s.getForUpdate(tx, uid, id)
	if err != nil {
		return nil, err
	}

	current, err := s.capitalService.amountForUpdate(tx, uid)
	if err != nil {
		return nil, err
	}

	reversed := signedEffect(old.Type, old.Amount).Neg()
	next := applyEffect(current, reversed)

	_, err = tx.Exec("DELETE FROM transactions WHERE id = ? AND user_id = ?", id, uid)
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", id).Msg("Error deleting transaction")
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err = s.capitalService.setAmountInTx(tx, uid, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing delete transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("transaction_id", id).
		Str("user_id", uid).
		Str("reversed_amount", reversed.String()).
		Str("remaining_capital", next.String()).
		Msg("Transaction deleted")

	return &models.DeleteResult{
		Status:           "DELETED",
		ID:               id,
		ReversedAmount:   reversed,
		RemainingCapital: next,
	}, nil
}

func (s *TransactionService) GetByID(uid, id string) (*models.Transaction, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, type, amount, category, tx_date, note, source, remaining_capital, created_at, updated_at
		 FROM transactions WHERE id = ? AND user_id = ?`,
		id, uid,
	)

	entry, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Transaction not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", id).Msg("Error fetching transaction")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return entry, nil
}

// List is a pure read: it never touches the capital and holds no user lock.
func (s *TransactionService) List(uid string, params models.ListParams) (*models.ListResult, error) {
	q, err := buildLedgerQuery(uid, params)
	if err != nil {
		return nil, err
	}

	query, args := q.sql()
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error listing transactions")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	items := []*models.Transaction{}
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	result := &models.ListResult{Items: items}
	// One page ahead only: a full page advertises a next cursor even when
	// the following page turns out empty.
	if len(items) == q.limit {
		last := items[len(items)-1]
		result.NextCursor = EncodeCursor(last.Date, last.ID)
	}

	return result, nil
}

// getForUpdate locks the entry's row for the rest of the transaction.
func (s *TransactionService) getForUpdate(tx *sql.Tx, uid, id string) (*models.Transaction, error) {
	row := tx.QueryRow(
		`SELECT id, user_id, type, amount, category, tx_date, note, source, remaining_capital, created_at, updated_at
		 FROM transactions WHERE id = ? AND user_id = ? FOR UPDATE`,
		id, uid,
	)

	entry, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Transaction not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", id).Msg("Error fetching transaction for update")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var entry models.Transaction
	var note sql.NullString

	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Type, &entry.Amount, &entry.Category,
		&entry.Date, &note, &entry.Source, &entry.RemainingCapital,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if note.Valid {
		entry.Note = &note.String
	}

	return &entry, nil
}
