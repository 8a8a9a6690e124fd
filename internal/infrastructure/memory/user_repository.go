package memory

import (
	"context"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) CreateWithInitialAccount(ctx context.Context, params user.CreateParams, initial account.CreateParams) (*user.User, *account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.phones[params.PhoneNumber]; ok {
		return nil, nil, user.ErrPhoneTaken
	}

	r.s.nextUserID++
	now := r.s.now()
	u := &user.User{
		ID:           r.s.nextUserID,
		PhoneNumber:  params.PhoneNumber,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	initial.UserID = u.ID
	acc, err := r.s.insertAccountLocked(initial)
	if err != nil {
		r.s.nextUserID--
		return nil, nil, err
	}

	r.s.users[u.ID] = u
	r.s.phones[u.PhoneNumber] = u.ID

	out := *u
	return &out, acc, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.phones[phone]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	out := *r.s.users[id]
	return &out, nil
}
