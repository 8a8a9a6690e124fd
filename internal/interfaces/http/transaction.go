package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"flowfunds/internal/domain/ledger"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/middleware"
	"flowfunds/internal/shared/money"
)

// TransactionHandler serves posting and the transaction history
type TransactionHandler struct {
	poster *transaction.Poster
	ledger *ledger.Service
	logger *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(poster *transaction.Poster, ledgerService *ledger.Service, l *zap.Logger) *TransactionHandler {
	return &TransactionHandler{poster: poster, ledger: ledgerService, logger: l}
}

type CreateTransactionRequest struct {
	Type      string `json:"type"`
	Amount    Amount `json:"amount"`
	Reason    string `json:"reason"`
	Category  string `json:"category"`
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
}

// PostingErrorResponse is the body of a rejected or failed posting
type PostingErrorResponse struct {
	Kind    transaction.Kind `json:"kind"`
	Message string           `json:"message"`
}

// HandleTransactions lists the caller's history (GET) or posts a transaction (POST)
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListTransactions(w, r, userID)
	case http.MethodPost:
		h.handleCreateTransaction(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) handleListTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	txs, err := h.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		logger.WithTrace(r.Context(), h.logger).Error("failed to list transactions",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (h *TransactionHandler) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected RFC 3339 or YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	created, err := h.poster.Post(r.Context(), transaction.PostRequest{
		UserID:    userID,
		UserPhone: middleware.PhoneFromContext(r.Context()),
		AccountID: req.AccountID,
		Type:      req.Type,
		Amount:    req.Amount.Value,
		Reason:    req.Reason,
		Category:  req.Category,
		Date:      date,
	})
	if err != nil {
		writePostingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

// parseDate accepts a full timestamp or a calendar day. Empty means "now".
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writePostingError(w http.ResponseWriter, err error) {
	var perr *transaction.Error
	if !errors.As(err, &perr) {
		perr = transaction.ErrPostingFailed
	}

	status := http.StatusServiceUnavailable
	switch perr.Kind {
	case transaction.KindInvalidAccount, transaction.KindInvalidAmount,
		transaction.KindInvalidType, transaction.KindInvalidReason:
		status = http.StatusUnprocessableEntity
	case transaction.KindInsufficientFunds:
		status = http.StatusConflict
	}

	message := perr.Message
	if message == "" {
		message = string(perr.Kind)
	}
	writeJSON(w, status, PostingErrorResponse{Kind: perr.Kind, Message: message})
}

// DashboardHandler serves the dashboard summary
type DashboardHandler struct {
	ledger *ledger.Service
	logger *zap.Logger
}

func NewDashboardHandler(ledgerService *ledger.Service, l *zap.Logger) *DashboardHandler {
	return &DashboardHandler{ledger: ledgerService, logger: l}
}

type DashboardResponse struct {
	TotalBalance       string                `json:"total_balance"`
	AccountCount       int                   `json:"account_count"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// HandleSummary returns the caller's total balance and recent transactions
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := h.ledger.DashboardSummary(r.Context(), userID)
	if err != nil {
		logger.WithTrace(r.Context(), h.logger).Error("failed to build dashboard",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		TotalBalance:       money.Format(summary.TotalBalance),
		AccountCount:       summary.AccountCount,
		RecentTransactions: toTransactionResponses(summary.RecentTransactions),
	})
}
