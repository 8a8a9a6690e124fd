// Package ledger serves the read side of the ledger: the dashboard and the
// transaction history. Every call reads committed state directly.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/transaction"
)

// RecentLimit caps the dashboard's recent transactions.
const RecentLimit = 5

type AccountLister interface {
	ListActiveByUserID(ctx context.Context, userID int64) ([]*account.Account, error)
}

type Dashboard struct {
	TotalBalance       decimal.Decimal
	AccountCount       int
	RecentTransactions []*transaction.Transaction
}

type Service struct {
	accounts     AccountLister
	transactions transaction.Repository
}

func NewService(accounts AccountLister, transactions transaction.Repository) *Service {
	return &Service{accounts: accounts, transactions: transactions}
}

// DashboardSummary sums the user's active balances and returns their five
// most recent transactions. The two reads run concurrently.
func (s *Service) DashboardSummary(ctx context.Context, userID int64) (*Dashboard, error) {
	var (
		accounts []*account.Account
		recent   []*transaction.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ListActiveByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.transactions.ListByUserID(gctx, userID, RecentLimit)
		if err != nil {
			return fmt.Errorf("failed to list recent transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	if recent == nil {
		recent = []*transaction.Transaction{}
	}

	return &Dashboard{
		TotalBalance:       total,
		AccountCount:       len(accounts),
		RecentTransactions: recent,
	}, nil
}

// ListTransactions returns the user's full history, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]*transaction.Transaction, error) {
	txs, err := s.transactions.ListByUserID(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txs == nil {
		txs = []*transaction.Transaction{}
	}
	return txs, nil
}
