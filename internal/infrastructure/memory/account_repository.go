package memory

import (
	"context"
	"errors"
	"sort"

	"flowfunds/internal/domain/account"
)

var errDuplicateSavings = errors.New("user already has a savings account")

type AccountRepository struct {
	s *Store
}

func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertAccountLocked(params)
}

// insertAccountLocked must be called with mu held for writing.
func (s *Store) insertAccountLocked(params account.CreateParams) (*account.Account, error) {
	if _, ok := s.accounts[params.ID]; ok {
		return nil, errors.New("account id already exists")
	}
	if params.Type == account.TypeSavings {
		if _, ok := s.savingsByUser[params.UserID]; ok {
			return nil, errDuplicateSavings
		}
	}

	now := s.now()
	acc := account.Account{
		ID:        params.ID,
		UserID:    params.UserID,
		Name:      params.Name,
		Number:    params.Number,
		Type:      params.Type,
		Balance:   params.InitialBalance,
		Currency:  params.Currency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[acc.ID] = &accountRow{acc: acc, seq: s.nextSeq()}
	if acc.IsSavings() {
		s.savingsByUser[acc.UserID] = acc.ID
	}
	return &acc, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	acc := row.acc
	return &acc, nil
}

func (r *AccountRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	r.s.mu.RLock()
	rows := make([]accountRow, 0)
	for _, row := range r.s.accounts {
		if row.acc.UserID == userID && row.acc.Active {
			rows = append(rows, *row)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	accounts := make([]*account.Account, len(rows))
	for i := range rows {
		accounts[i] = &rows[i].acc
	}
	return accounts, nil
}

func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	if row.acc.Active != active {
		row.acc.Active = active
		row.acc.UpdatedAt = r.s.now()
	}
	return nil
}
