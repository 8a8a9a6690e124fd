package memory

import (
	"context"
	"sort"
	"time"

	"flowfunds/internal/domain/transaction"
)

type TransactionRepository struct {
	s *Store
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error) {
	return r.list(func(t *transaction.Transaction) bool {
		return t.UserID == userID
	}, limit), nil
}

func (r *TransactionRepository) ListExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*transaction.Transaction, error) {
	return r.list(func(t *transaction.Transaction) bool {
		return t.UserID == userID &&
			t.Type == transaction.TypeExpense &&
			!t.Date.Before(from) && t.Date.Before(to)
	}, 0), nil
}

// list returns matching rows newest first, with account names filled in.
func (r *TransactionRepository) list(match func(*transaction.Transaction) bool, limit int) []*transaction.Transaction {
	r.s.mu.RLock()
	rows := make([]transactionRow, 0)
	for _, row := range r.s.transactions {
		if match(&row.t) {
			if acc, ok := r.s.accounts[row.t.AccountID]; ok {
				row.t.AccountName = acc.acc.Name
			}
			rows = append(rows, row)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.t.Date.Equal(b.t.Date) {
			return a.t.Date.After(b.t.Date)
		}
		if !a.t.CreatedAt.Equal(b.t.CreatedAt) {
			return a.t.CreatedAt.After(b.t.CreatedAt)
		}
		return a.seq > b.seq
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]*transaction.Transaction, len(rows))
	for i := range rows {
		out[i] = &rows[i].t
	}
	return out
}
