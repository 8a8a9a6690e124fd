package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"flowfunds/internal/domain/account"
)

// Repository defines the read side of transaction data access
type Repository interface {
	// ListByUserID returns the user's transactions ordered by date, newest
	// first, then by creation time. limit <= 0 means no limit.
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*Transaction, error)

	// ListExpensesBetween returns expenses dated in [from, to).
	ListExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*Transaction, error)
}

// AccountFinder is the account lookup the poster validates against.
type AccountFinder interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
}

// UnitOfWork runs fn atomically. If fn returns an error every write made
// through tx is discarded.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of writes available inside a unit of work. Locks taken by
// LockAccount and FindOrCreateSavingsAccount are held until the unit ends.
type Tx interface {
	// LockAccount takes the account's row lock and returns its current state.
	LockAccount(ctx context.Context, id string) (*account.Account, error)

	InsertTransaction(ctx context.Context, params CreateParams) (*Transaction, error)

	// AdjustBalance adds delta to the balance regardless of the active flag.
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error)

	// FindOrCreateSavingsAccount returns the user's single savings account,
	// locked, creating it with a zero balance if it does not exist yet.
	FindOrCreateSavingsAccount(ctx context.Context, userID int64, reference, currency string) (*account.Account, error)
}
