package postgres

import (
	"context"
	"fmt"
	"time"

	"flowfunds/internal/domain/transaction"
)

const transactionColumns = `id, user_id, account_id, type, amount, category, reason, date, created_at`

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// scanTransaction reads transactionColumns, followed by the account name
// when withAccount is set.
func scanTransaction(row rowScanner, withAccount bool) (*transaction.Transaction, error) {
	var t transaction.Transaction
	dest := []any{
		&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Amount,
		&t.Category, &t.Reason, &t.Date, &t.CreatedAt,
	}
	if withAccount {
		dest = append(dest, &t.AccountName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.account_id, t.type, t.amount, t.category, t.reason, t.date, t.created_at, a.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
		ORDER BY t.date DESC, t.created_at DESC, t.id DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.list(ctx, query, args...)
}

func (r *TransactionRepository) ListExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*transaction.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.account_id, t.type, t.amount, t.category, t.reason, t.date, t.created_at, a.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1 AND t.type = 'expense' AND t.date >= $2 AND t.date < $3
		ORDER BY t.date DESC, t.created_at DESC
	`
	return r.list(ctx, query, userID, from, to)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
