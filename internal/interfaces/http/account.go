package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/middleware"
)

// AccountHandler serves the account endpoints
type AccountHandler struct {
	accountService *account.Service
	logger         *zap.Logger
}

// NewAccountHandler creates a new account handler with service layer
func NewAccountHandler(accountService *account.Service, l *zap.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: l}
}

type CreateAccountRequest struct {
	Name           string `json:"name"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	InitialBalance Amount `json:"initial_balance"`
	Currency       string `json:"currency"`
}

// HandleAccounts lists the caller's active accounts (GET) or opens a new one (POST)
func (h *AccountHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListAccounts(w, r, userID)
	case http.MethodPost:
		h.handleCreateAccount(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AccountHandler) handleListAccounts(w http.ResponseWriter, r *http.Request, userID int64) {
	accounts, err := h.accountService.ListActiveAccounts(r.Context(), userID)
	if err != nil {
		logger.WithTrace(r.Context(), h.logger).Error("failed to list accounts",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		response = append(response, toAccountResponse(acc))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *AccountHandler) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InitialBalance.Malformed() {
		http.Error(w, account.ErrInvalidBalance.Error(), http.StatusBadRequest)
		return
	}

	acc, err := h.accountService.CreateAccount(r.Context(), account.CreateParams{
		UserID:         userID,
		Name:           req.Name,
		Number:         req.Number,
		Type:           req.Type,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidAccountType),
			errors.Is(err, account.ErrInvalidCurrency),
			errors.Is(err, account.ErrInvalidInput),
			errors.Is(err, account.ErrInvalidBalance):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.WithTrace(r.Context(), h.logger).Error("failed to create account",
				zap.Int64("user_id", userID), zap.Error(err))
			http.Error(w, "Failed to create account", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

// HandleAccountByID handles operations on a specific account (GET and DELETE)
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetAccountByID(w, r, userID, accountID)
	case http.MethodDelete:
		h.handleDeleteAccount(w, r, userID, accountID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetAccountByID returns a specific account, active or not
func (h *AccountHandler) handleGetAccountByID(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	acc, err := h.accountService.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to get account",
			zap.String("account_id", accountID), zap.Error(err))
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// handleDeleteAccount soft-deletes an account
func (h *AccountHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	err := h.accountService.DeactivateAccount(r.Context(), accountID, userID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to deactivate account",
			zap.String("account_id", accountID), zap.Error(err))
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
