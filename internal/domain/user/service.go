package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/shared/auth"
)

// Service contains the business logic for sign-up and sign-in
type Service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates the user together with a "My Account" mobile-money
// account holding the initial amount.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, *account.Account, error) {
	params.PhoneNumber = strings.TrimSpace(params.PhoneNumber)
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)

	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, nil, err
	}

	initial := account.CreateParams{
		ID:             uuid.New().String(),
		Name:           InitialAccountName,
		Number:         params.PhoneNumber,
		Type:           account.TypeMomo,
		Currency:       account.DefaultCurrency,
		InitialBalance: params.InitialAmount,
	}
	return s.repo.CreateWithInitialAccount(ctx, CreateParams{
		PhoneNumber:  params.PhoneNumber,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: hash,
	}, initial)
}

// Authenticate checks a phone/password pair. Unknown phones and wrong
// passwords are reported the same way.
func (s *Service) Authenticate(ctx context.Context, phone, password string) (*User, error) {
	u, err := s.repo.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetUser returns a user's profile.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, id)
}
