package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/ledger"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/infrastructure/memory"
)

func setup(t *testing.T, balance int64) (*memory.Store, *transaction.Poster, *ledger.Service, *account.Account) {
	t.Helper()
	store := memory.New()
	acc, err := store.Accounts().Create(context.Background(), account.CreateParams{
		ID:             uuid.New().String(),
		UserID:         1,
		Name:           "My Account",
		Number:         "699001122",
		Type:           account.TypeMomo,
		Currency:       "XAF",
		InitialBalance: decimal.NewFromInt(balance),
	})
	require.NoError(t, err)

	poster := transaction.NewPoster(store.Accounts(), store, nil, nil, transaction.PosterConfig{})
	return store, poster, ledger.NewService(store.Accounts(), store.Transactions()), acc
}

func post(t *testing.T, p *transaction.Poster, accountID, typ, amount, reason string, date *time.Time) *transaction.Transaction {
	t.Helper()
	tx, err := p.Post(context.Background(), transaction.PostRequest{
		UserID:    1,
		UserPhone: "699001122",
		AccountID: accountID,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
		Reason:    reason,
		Category:  "Misc",
		Date:      date,
	})
	require.NoError(t, err)
	return tx
}

func TestDashboardSummary_AfterExpense(t *testing.T) {
	_, poster, svc, acc := setup(t, 5000)

	post(t, poster, acc.ID, transaction.TypeExpense, "2000", "Lunch", nil)

	d, err := svc.DashboardSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, d.TotalBalance.Equal(decimal.NewFromInt(3000)), "total = %s", d.TotalBalance)
	assert.Equal(t, 1, d.AccountCount)
	require.Len(t, d.RecentTransactions, 1)
	assert.Equal(t, "Lunch", d.RecentTransactions[0].Reason)
}

func TestDashboardSummary_SavingsCountedAndInactiveExcluded(t *testing.T) {
	store, poster, svc, acc := setup(t, 5000)
	ctx := context.Background()

	post(t, poster, acc.ID, transaction.TypeSave, "1000", "Save", nil)

	d, err := svc.DashboardSummary(ctx, 1)
	require.NoError(t, err)
	assert.True(t, d.TotalBalance.Equal(decimal.NewFromInt(5000)), "a save moves money between the user's accounts")
	assert.Equal(t, 2, d.AccountCount)

	require.NoError(t, store.Accounts().SetActive(ctx, acc.ID, false))
	d, err = svc.DashboardSummary(ctx, 1)
	require.NoError(t, err)
	assert.True(t, d.TotalBalance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, d.AccountCount)
	assert.Len(t, d.RecentTransactions, 1, "history survives deactivation")
}

func TestDashboardSummary_RecentCappedAndOrdered(t *testing.T) {
	_, poster, svc, acc := setup(t, 0)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		d := base.AddDate(0, 0, i)
		post(t, poster, acc.ID, transaction.TypeIncome, "1", d.Format("2006-01-02"), &d)
	}
	// Same date as the newest one, created later: must come first.
	newest := base.AddDate(0, 0, 7)
	post(t, poster, acc.ID, transaction.TypeIncome, "1", "tie", &newest)

	d, err := svc.DashboardSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, d.RecentTransactions, ledger.RecentLimit)

	reasons := make([]string, 0, len(d.RecentTransactions))
	for _, tx := range d.RecentTransactions {
		reasons = append(reasons, tx.Reason)
	}
	assert.Equal(t, []string{"tie", "2026-01-08", "2026-01-07", "2026-01-06", "2026-01-05"}, reasons)
}

func TestDashboardSummary_IdempotentReads(t *testing.T) {
	_, poster, svc, acc := setup(t, 5000)
	post(t, poster, acc.ID, transaction.TypeExpense, "120.50", "Taxi", nil)
	post(t, poster, acc.ID, transaction.TypeSave, "300", "Save", nil)

	first, err := svc.DashboardSummary(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.DashboardSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDashboardSummary_EmptyUser(t *testing.T) {
	_, _, svc, _ := setup(t, 0)

	d, err := svc.DashboardSummary(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, d.TotalBalance.IsZero())
	assert.Equal(t, 0, d.AccountCount)
	assert.NotNil(t, d.RecentTransactions)
	assert.Empty(t, d.RecentTransactions)
}

func TestListTransactions(t *testing.T) {
	_, poster, svc, acc := setup(t, 1000)
	early := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	post(t, poster, acc.ID, transaction.TypeExpense, "10", "early", &early)
	post(t, poster, acc.ID, transaction.TypeExpense, "10", "late", &late)
	for i := 0; i < 10; i++ {
		post(t, poster, acc.ID, transaction.TypeIncome, "1", "filler", &early)
	}

	txs, err := svc.ListTransactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, txs, 12, "history is unbounded")
	assert.Equal(t, "late", txs[0].Reason)
	assert.Equal(t, "My Account", txs[0].AccountName)

	other, err := svc.ListTransactions(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

type failingAccounts struct{ err error }

func (f failingAccounts) ListActiveByUserID(context.Context, int64) ([]*account.Account, error) {
	return nil, f.err
}

func TestDashboardSummary_PropagatesReadErrors(t *testing.T) {
	store := memory.New()
	boom := errors.New("db down")
	svc := ledger.NewService(failingAccounts{err: boom}, store.Transactions())

	_, err := svc.DashboardSummary(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}
