package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/shared/money"
)

// WithinTx runs fn with exclusive access to every account it locks. Staged
// writes are published when fn returns nil and discarded otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx transaction.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		s:           s,
		locked:      make(map[string]account.Account),
		created:     make(map[string]bool),
		savingsHeld: make(map[int64]bool),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.commit(tx)
	return nil
}

type memTx struct {
	s           *Store
	held        []*sync.Mutex
	locked      map[string]account.Account
	created     map[string]bool
	savingsHeld map[int64]bool
	inserts     []transaction.Transaction
}

func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
}

func (tx *memTx) hold(m *sync.Mutex) {
	m.Lock()
	tx.held = append(tx.held, m)
}

func (tx *memTx) LockAccount(ctx context.Context, id string) (*account.Account, error) {
	if a, ok := tx.locked[id]; ok {
		return &a, nil
	}

	tx.s.mu.RLock()
	_, exists := tx.s.accounts[id]
	tx.s.mu.RUnlock()
	if !exists {
		return nil, account.ErrAccountNotFound
	}

	tx.hold(tx.s.accountLock(id))

	// Re-read under the row lock; the balance may have been committed by
	// the previous holder.
	tx.s.mu.RLock()
	a := tx.s.accounts[id].acc
	tx.s.mu.RUnlock()

	tx.locked[id] = a
	return &a, nil
}

func (tx *memTx) InsertTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if _, ok := tx.locked[params.AccountID]; !ok {
		return nil, fmt.Errorf("failed to insert transaction: account %s is not locked", params.AccountID)
	}

	t := transaction.Transaction{
		ID:        params.ID,
		UserID:    params.UserID,
		AccountID: params.AccountID,
		Type:      params.Type,
		Amount:    params.Amount,
		Category:  params.Category,
		Reason:    params.Reason,
		Date:      params.Date,
		CreatedAt: tx.s.now(),
	}
	tx.inserts = append(tx.inserts, t)
	return &t, nil
}

func (tx *memTx) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	a, ok := tx.locked[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: account %s is not locked", accountID)
	}

	next := a.Balance.Add(delta)
	if !money.Fits(next) {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %s out of range", next)
	}
	a.Balance = next
	tx.locked[accountID] = a
	return next, nil
}

func (tx *memTx) FindOrCreateSavingsAccount(ctx context.Context, userID int64, reference, currency string) (*account.Account, error) {
	if !tx.savingsHeld[userID] {
		tx.hold(tx.s.savingsLock(userID))
		tx.savingsHeld[userID] = true
	}

	for _, a := range tx.locked {
		if a.UserID == userID && a.IsSavings() {
			return &a, nil
		}
	}

	tx.s.mu.RLock()
	id, ok := tx.s.savingsByUser[userID]
	tx.s.mu.RUnlock()
	if ok {
		return tx.LockAccount(ctx, id)
	}

	now := tx.s.now()
	a := account.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      account.SavingsAccountName,
		Number:    reference,
		Type:      account.TypeSavings,
		Balance:   decimal.Zero,
		Currency:  currency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tx.hold(tx.s.accountLock(a.ID))
	tx.locked[a.ID] = a
	tx.created[a.ID] = true
	return &a, nil
}

func (s *Store) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id := range tx.created {
		a := tx.locked[id]
		s.accounts[id] = &accountRow{acc: a, seq: s.nextSeq()}
		s.savingsByUser[a.UserID] = id
	}
	for id, a := range tx.locked {
		if tx.created[id] {
			continue
		}
		row := s.accounts[id]
		if !row.acc.Balance.Equal(a.Balance) {
			row.acc.Balance = a.Balance
			row.acc.UpdatedAt = now
		}
	}
	for _, t := range tx.inserts {
		s.transactions = append(s.transactions, transactionRow{t: t, seq: s.nextSeq()})
	}
}
