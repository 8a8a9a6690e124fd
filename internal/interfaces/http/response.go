package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/domain/user"
	"flowfunds/internal/shared/money"
)

// Amount is a request amount sent either as a JSON number or as a string.
// A value that does not parse decodes to zero with Valid unset, so the
// domain layer reports it in its own validation order. An absent field
// stays zero and is not Malformed.
type Amount struct {
	Value   decimal.Decimal
	Valid   bool
	present bool
}

// Malformed reports whether the field was sent but could not be parsed.
func (a Amount) Malformed() bool {
	return a.present && !a.Valid
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	a.present = true
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
	}

	d, err := money.Parse(raw)
	if err != nil {
		a.Value, a.Valid = decimal.Zero, false
		return nil
	}
	a.Value, a.Valid = d, true
	return nil
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CreatedAt   string `json:"created_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Number    string `json:"number"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toAccountResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID,
		Name:      acc.Name,
		Number:    acc.Number,
		Type:      acc.Type,
		Balance:   money.Format(acc.Balance),
		Currency:  acc.Currency,
		Active:    acc.Active,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
}

// TransactionResponse is the public view of a posted transaction
type TransactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
	Date        string `json:"date"`
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
}

func toTransactionResponse(tx *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      money.Format(tx.Amount),
		Category:    tx.Category,
		Reason:      tx.Reason,
		Date:        tx.Date.Format(time.RFC3339),
		AccountID:   tx.AccountID,
		AccountName: tx.AccountName,
	}
}

func toTransactionResponses(txs []*transaction.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		response = append(response, toTransactionResponse(tx))
	}
	return response
}

const maxBodySize = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
