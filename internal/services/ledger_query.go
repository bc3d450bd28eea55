package services

import (
	"strings"
	"time"

	"capital-tracker/internal/apperr"
	"capital-tracker/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ledgerQuery is the resolved read query over a user's ledger: optional
// predicates plus the fixed ordering (date desc, id desc).
type ledgerQuery struct {
	uid      string
	txType   string
	category string
	from     *time.Time
	to       *time.Time
	cursor   *Cursor
	limit    int
}

// buildLedgerQuery turns raw list parameters into store predicates. Dates
// are inclusive bounds; an unparsable date fails INVALID_DATE, a malformed
// cursor BAD_CURSOR. The page size is clamped to [1,100], defaulting to 20.
func buildLedgerQuery(uid string, p models.ListParams) (*ledgerQuery, error) {
	q := &ledgerQuery{
		uid:      uid,
		txType:   p.Type,
		category: strings.TrimSpace(p.Category),
		limit:    clampPageSize(p.Limit),
	}

	if p.From != "" {
		from, err := parseISODate(p.From)
		if err != nil {
			return nil, apperr.InvalidDate()
		}
		q.from = &from
	}
	if p.To != "" {
		to, err := parseISODate(p.To)
		if err != nil {
			return nil, apperr.InvalidDate()
		}
		q.to = &to
	}
	if p.Cursor != "" {
		cursor, err := DecodeCursor(p.Cursor)
		if err != nil {
			return nil, err
		}
		q.cursor = cursor
	}

	return q, nil
}

// sql renders the SELECT with its ordered argument list. The cursor becomes
// the keyset predicate (tx_date, id) < (cursor.date, cursor.id) under the
// descending two-key order.
func (q *ledgerQuery) sql() (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, user_id, type, amount, category, tx_date, note, source, remaining_capital, created_at, updated_at
		FROM transactions
		WHERE user_id = ?`)
	args := []any{q.uid}

	if q.txType != "" {
		b.WriteString(" AND type = ?")
		args = append(args, q.txType)
	}
	if q.category != "" {
		b.WriteString(" AND category = ?")
		args = append(args, q.category)
	}
	if q.from != nil {
		b.WriteString(" AND tx_date >= ?")
		args = append(args, *q.from)
	}
	if q.to != nil {
		b.WriteString(" AND tx_date <= ?")
		args = append(args, *q.to)
	}
	if q.cursor != nil {
		b.WriteString(" AND (tx_date < ? OR (tx_date = ? AND id < ?))")
		args = append(args, q.cursor.Date, q.cursor.Date, q.cursor.ID)
	}

	b.WriteString(" ORDER BY tx_date DESC, id DESC LIMIT ?")
	args = append(args, q.limit)

	return b.String(), args
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// parseISODate accepts full RFC3339 timestamps and bare YYYY-MM-DD days,
// normalized to UTC.
func parseISODate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
