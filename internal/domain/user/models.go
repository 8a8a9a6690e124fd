package user

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"flowfunds/internal/shared/money"
)

const (
	InitialAccountName = "My Account"

	maxPhoneLength = 20
	maxNameLength  = 150
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrInvalidPhone       = errors.New("phone number is required and must be at most 20 characters")
	ErrInvalidName        = errors.New("first and last name must be at most 150 characters")
	ErrInvalidAmount      = errors.New("initial amount must be a non-negative amount with at most 2 decimals")
)

type User struct {
	ID           int64     `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterParams is a sign-up request.
type RegisterParams struct {
	PhoneNumber   string
	Password      string
	FirstName     string
	LastName      string
	InitialAmount decimal.Decimal
}

func (p RegisterParams) Validate() error {
	phone := strings.TrimSpace(p.PhoneNumber)
	if phone == "" || utf8.RuneCountInString(phone) > maxPhoneLength {
		return ErrInvalidPhone
	}
	if utf8.RuneCountInString(p.FirstName) > maxNameLength || utf8.RuneCountInString(p.LastName) > maxNameLength {
		return ErrInvalidName
	}
	if p.InitialAmount.IsNegative() || !money.Fits(p.InitialAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// CreateParams is the row written for a new user.
type CreateParams struct {
	PhoneNumber  string
	FirstName    string
	LastName     string
	PasswordHash string
}
