package user

import (
	"context"

	"flowfunds/internal/domain/account"
)

// Repository defines the interface for user data access
type Repository interface {
	// CreateWithInitialAccount inserts the user and their first account in
	// one transaction. The account's UserID is filled in by the repository.
	// A duplicate phone number returns ErrPhoneTaken.
	CreateWithInitialAccount(ctx context.Context, params CreateParams, initial account.CreateParams) (*User, *account.Account, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
}
