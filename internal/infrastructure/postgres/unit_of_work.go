package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/transaction"
)

// UnitOfWork maps a posting onto one database transaction. Row locks are
// taken with SELECT ... FOR UPDATE and released on commit or rollback.
type UnitOfWork struct {
	db *DB
}

func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx transaction.Tx) error) error {
	dbTx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	if err := fn(ctx, &pgTx{tx: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx *Tx
}

func (t *pgTx) LockAccount(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	acc, err := scanAccount(t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return acc, nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, type, amount, category, reason, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + transactionColumns

	tx, err := scanTransaction(t.tx.QueryRowContext(ctx, query,
		params.ID, params.UserID, params.AccountID, params.Type, params.Amount,
		params.Category, params.Reason, params.Date,
	), false)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tx, nil
}

func (t *pgTx) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := t.tx.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE id = $1 RETURNING balance`,
		accountID, delta,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, account.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return balance, nil
}

// FindOrCreateSavingsAccount relies on accounts_one_savings_per_user: the
// losing inserter of a race gets no row back and re-selects the winner's,
// blocking on its lock until the winner commits.
func (t *pgTx) FindOrCreateSavingsAccount(ctx context.Context, userID int64, reference, currency string) (*account.Account, error) {
	insert := `
		INSERT INTO accounts (id, user_id, name, number, type, balance, currency)
		VALUES ($1, $2, $3, $4, 'savings', 0, $5)
		ON CONFLICT (user_id) WHERE type = 'savings' DO NOTHING
	`
	if _, err := t.tx.ExecContext(ctx, insert,
		uuid.New().String(), userID, account.SavingsAccountName, reference, currency,
	); err != nil {
		return nil, fmt.Errorf("failed to create savings account: %w", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND type = 'savings' FOR UPDATE`
	acc, err := scanAccount(t.tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock savings account: %w", err)
	}
	return acc, nil
}
