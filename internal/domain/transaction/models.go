package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
	TypeSave    = "save"

	FallbackCategory = "Other"

	MaxReasonLength   = 255
	MaxCategoryLength = 100
)

// Transaction is an append-only posting against exactly one account. A save
// records only its source account; the savings side is a balance effect.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Reason      string          `json:"reason"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateParams is the row written by the apply step.
type CreateParams struct {
	ID        string
	UserID    int64
	AccountID string
	Type      string
	Amount    decimal.Decimal
	Category  string
	Reason    string
	Date      time.Time
}

// PostRequest is an inbound posting from an authenticated caller.
type PostRequest struct {
	UserID    int64
	UserPhone string
	AccountID string
	Type      string
	Amount    decimal.Decimal
	Reason    string
	Category  string
	Date      *time.Time
}

// IsValidType checks if the provided transaction type is valid.
func IsValidType(t string) bool {
	switch t {
	case TypeIncome, TypeExpense, TypeSave:
		return true
	}
	return false
}

// Debits reports whether postings of type t take money out of the source account.
func Debits(t string) bool {
	return t == TypeExpense || t == TypeSave
}

// SourceDelta is the signed balance change a posting applies to its source account.
func SourceDelta(t string, amount decimal.Decimal) decimal.Decimal {
	if Debits(t) {
		return amount.Neg()
	}
	return amount
}
