package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"flowfunds/internal/shared/money"
)

const (
	TypeCash    = "cash"
	TypeMomo    = "momo"
	TypeOM      = "om"
	TypeBank    = "bank"
	TypeSavings = "savings"

	DefaultCurrency = "XAF"

	SavingsAccountName = "Main Savings"

	maxNameLength   = 100
	maxNumberLength = 50
)

var (
	accountTypes = map[string]struct{}{
		TypeCash:    {},
		TypeMomo:    {},
		TypeOM:      {},
		TypeBank:    {},
		TypeSavings: {},
	}
	// ISO 4217 codes accepted for new accounts. The XAF/XOF zones come first.
	validCurrencies = map[string]struct{}{
		"XAF": {}, "XOF": {}, "NGN": {}, "GHS": {}, "KES": {},
		"UGX": {}, "TZS": {}, "RWF": {}, "ZAR": {}, "MAD": {},
		"EGP": {}, "USD": {}, "EUR": {}, "GBP": {}, "CAD": {},
		"CHF": {}, "CNY": {}, "JPY": {},
	}
)

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCurrency    = errors.New("valid ISO 4217 currency is required")
	ErrInvalidBalance     = errors.New("initial balance must be a non-negative amount with at most 2 decimals")
)

// Account is a named, typed balance bucket owned by exactly one user.
// Only Balance and Active change after creation.
type Account struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsSavings reports whether a is the user's derived savings account.
func (a *Account) IsSavings() bool {
	return a.Type == TypeSavings
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	ID             string
	UserID         int64
	Name           string
	Number         string
	Type           string
	Currency       string
	InitialBalance decimal.Decimal
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" || utf8.RuneCountInString(p.Name) > maxNameLength {
		return ErrInvalidInput
	}
	if strings.TrimSpace(p.Number) == "" || utf8.RuneCountInString(p.Number) > maxNumberLength {
		return ErrInvalidInput
	}
	if !IsValidAccountType(p.Type) {
		return ErrInvalidAccountType
	}
	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	if p.InitialBalance.IsNegative() || !money.Fits(p.InitialBalance) {
		return ErrInvalidBalance
	}
	return nil
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}

// IsValidCurrency checks if the provided currency is a valid ISO 4217 code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	_, ok := validCurrencies[c]
	return ok
}

// SavingsReference derives the external reference of a user's savings
// account from the last four characters of their phone number. Users without
// a phone number fall back to their zero-padded id.
func SavingsReference(phone string, userID int64) string {
	ref := strings.TrimSpace(phone)
	if ref == "" {
		ref = fmt.Sprintf("%04d", userID)
	}
	if n := len(ref); n > 4 {
		ref = ref[n-4:]
	}
	return "SAV-" + ref
}
