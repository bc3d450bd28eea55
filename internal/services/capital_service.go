package services

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"capital-tracker/internal/apperr"
	"capital-tracker/internal/models"
)

// resetConfirmToken must be sent verbatim before a reset touches anything.
const resetConfirmToken = "DELETE"

// resetBatchSize bounds each delete round during a reset.
const resetBatchSize = 500

// CapitalService owns the per-user capital record and serializes mutations
// per user: a sync.Map of mutexes on top of the store's row locks.
type CapitalService struct {
	db     *sql.DB
	logger zerolog.Logger
	mu     sync.Map
}

func NewCapitalService(db *sql.DB, logger zerolog.Logger) *CapitalService {
	return &CapitalService{
		db:     db,
		logger: logger,
	}
}

func (s *CapitalService) userMutex(uid string) *sync.Mutex {
	mu, _ := s.mu.LoadOrStore(uid, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Get returns the capital record, or nil when it has not been configured.
func (s *CapitalService) Get(uid string) (*models.Capital, error) {
	var capital models.Capital

	err := s.db.QueryRow(
		"SELECT user_id, amount, periodicity, created_at, updated_at FROM capitals WHERE user_id = ?",
		uid,
	).Scan(&capital.UserID, &capital.Amount, &capital.Periodicity, &capital.CreatedAt, &capital.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error fetching capital")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &capital, nil
}

// TopUp adds amount to the capital, creating the record on first use. A
// create requires periodicity; on updates it is optional and replaces the
// stored value when supplied.
func (s *CapitalService) TopUp(uid string, req *models.TopUpRequest) (*models.TopUpResult, error) {
	delta := req.Amount
	periodicity := req.NormalizedPeriodicity()

	mu := s.userMutex(uid)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting top-up transaction")
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var previous decimal.Decimal
	var stored models.Periodicity
	created := false

	err = tx.QueryRow(
		"SELECT amount, periodicity FROM capitals WHERE user_id = ? FOR UPDATE",
		uid,
	).Scan(&previous, &stored)

	switch {
	case err == sql.ErrNoRows:
		if periodicity == "" {
			return nil, apperr.PeriodicityRequired()
		}
		created = true
		stored = periodicity
		_, err = tx.Exec(
			"INSERT INTO capitals (user_id, amount, periodicity) VALUES (?, ?, ?)",
			uid, delta, string(periodicity),
		)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", uid).Msg("Error creating capital")
			return nil, fmt.Errorf("failed to create capital: %w", err)
		}
	case err != nil:
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error fetching capital for top-up")
		return nil, fmt.Errorf("failed to fetch capital: %w", err)
	default:
		if periodicity != "" {
			stored = periodicity
		}
		_, err = tx.Exec(
			"UPDATE capitals SET amount = ?, periodicity = ? WHERE user_id = ?",
			previous.Add(delta), string(stored), uid,
		)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", uid).Msg("Error updating capital")
			return nil, fmt.Errorf("failed to update capital: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing top-up")
		return nil, fmt.Errorf("failed to commit top-up: %w", err)
	}

	// Re-read so the response carries the store-assigned updated_at.
	capital, err := s.Get(uid)
	if err != nil {
		return nil, err
	}
	if capital == nil {
		return nil, fmt.Errorf("capital disappeared after top-up for user %s", uid)
	}

	s.logger.Info().
		Str("user_id", uid).
		Str("delta", delta.String()).
		Str("amount", capital.Amount.String()).
		Bool("created", created).
		Msg("Capital topped up")

	return &models.TopUpResult{
		Amount:      capital.Amount,
		Periodicity: capital.Periodicity,
		UpdatedAt:   capital.UpdatedAt,
		Meta: models.TopUpMeta{
			PreviousAmount: previous,
			DeltaAdded:     delta,
			Created:        created,
		},
	}, nil
}

// Reset deletes the capital record and truncates the user's ledger in
// bounded batches. The batched deletes run outside any single transaction,
// so an interruption can leave a partially truncated ledger; that is
// accepted best-effort behavior, not an atomicity guarantee.
func (s *CapitalService) Reset(uid, confirm string) (*models.ResetResult, error) {
	if confirm != resetConfirmToken {
		return nil, apperr.ConfirmationRequired()
	}

	mu := s.userMutex(uid)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.db.Exec("DELETE FROM capitals WHERE user_id = ?", uid)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error deleting capital")
		return nil, fmt.Errorf("failed to delete capital: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read delete result: %w", err)
	}
	existed := affected > 0

	var deleted int64
	for {
		res, err := s.db.Exec("DELETE FROM transactions WHERE user_id = ? LIMIT ?", uid, resetBatchSize)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", uid).Msg("Error deleting transactions batch")
			return nil, fmt.Errorf("failed to delete transactions: %w", err)
		}
		batch, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read delete result: %w", err)
		}
		deleted += batch
		if batch < resetBatchSize {
			break
		}
	}

	s.logger.Info().
		Str("user_id", uid).
		Bool("capital_existed", existed).
		Int64("transactions_deleted", deleted).
		Msg("Capital reset")

	return &models.ResetResult{
		Status:              "RESET",
		CapitalExisted:      existed,
		TransactionsDeleted: deleted,
		DeletedAt:           time.Now().UTC(),
	}, nil
}

// amountForUpdate reads and locks the capital row inside the caller's
// transaction. An unconfigured capital is a precondition failure: no ledger
// mutation may proceed without it.
func (s *CapitalService) amountForUpdate(tx *sql.Tx, uid string) (decimal.Decimal, error) {
	var current decimal.Decimal
	err := tx.QueryRow(
		"SELECT amount FROM capitals WHERE user_id = ? FOR UPDATE",
		uid,
	).Scan(&current)

	if err == sql.ErrNoRows {
		return decimal.Zero, apperr.CapitalNotConfigured()
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error locking capital row")
		return decimal.Zero, fmt.Errorf("failed to fetch capital: %w", err)
	}

	return current, nil
}

// setAmountInTx writes the new capital amount inside the caller's
// transaction; it commits together with the ledger write or not at all.
func (s *CapitalService) setAmountInTx(tx *sql.Tx, uid string, amount decimal.Decimal) error {
	_, err := tx.Exec("UPDATE capitals SET amount = ? WHERE user_id = ?", amount, uid)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uid).Msg("Error updating capital amount")
		return fmt.Errorf("failed to update capital: %w", err)
	}
	return nil
}
