package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account by its ID, active or not
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListActiveByUserID retrieves the user's active accounts, oldest first
	ListActiveByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// SetActive flips the soft-delete flag. Rows are never removed.
	SetActive(ctx context.Context, id string, active bool) error
}
