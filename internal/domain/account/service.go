package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation.
// Savings accounts are derived from "save" postings and cannot be opened here.
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.Currency == "" {
		params.Currency = DefaultCurrency
	}
	if params.ID == "" {
		params.ID = uuid.New().String()
	}
	if params.Type == TypeSavings {
		return nil, ErrInvalidAccountType
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetAccount retrieves an account by ID and verifies user ownership.
// Accounts owned by someone else are reported as not found.
func (s *Service) GetAccount(ctx context.Context, accountID string, userID int64) (*Account, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, ErrAccountNotFound
	}

	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if acc.UserID != userID {
		return nil, ErrAccountNotFound
	}

	return acc, nil
}

// ListActiveAccounts retrieves the user's active accounts, oldest first
func (s *Service) ListActiveAccounts(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListActiveByUserID(ctx, userID)
}

// DeactivateAccount soft-deletes an account after verifying ownership.
// The balance and the transaction history are left untouched.
func (s *Service) DeactivateAccount(ctx context.Context, accountID string, userID int64) error {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return err
	}

	return s.repo.SetActive(ctx, accountID, false)
}

// ReactivateAccount restores a soft-deleted account. It is an operator
// action and performs no ownership check.
func (s *Service) ReactivateAccount(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return ErrAccountNotFound
	}
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return err
	}

	return s.repo.SetActive(ctx, accountID, true)
}
