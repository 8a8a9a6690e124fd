package http

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"flowfunds/internal/domain/user"
	"flowfunds/internal/shared/auth"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/middleware"
)

// AuthHandler serves sign-up, sign-in and the caller's profile
type AuthHandler struct {
	userService *user.Service
	jwt         *auth.JWT
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service, jwt *auth.JWT, l *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, jwt: jwt, logger: l}
}

type RegisterRequest struct {
	PhoneNumber   string `json:"phone_number"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	InitialAmount Amount `json:"initial_amount"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// HandleRegister creates a user together with their first account
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InitialAmount.Malformed() {
		http.Error(w, user.ErrInvalidAmount.Error(), http.StatusBadRequest)
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, _, err := h.userService.Register(r.Context(), user.RegisterParams{
		PhoneNumber:   req.PhoneNumber,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		InitialAmount: req.InitialAmount.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrPhoneTaken):
			http.Error(w, "Phone number already registered", http.StatusConflict)
		case errors.Is(err, user.ErrInvalidPhone),
			errors.Is(err, user.ErrInvalidName),
			errors.Is(err, user.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.WithTrace(r.Context(), h.logger).Error("failed to register user", zap.Error(err))
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
		}
		return
	}

	h.respondWithToken(w, r, u, http.StatusCreated)
}

// HandleLogin exchanges a phone/password pair for a token
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || req.Password == "" {
		http.Error(w, "Phone number and password are required", http.StatusBadRequest)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			http.Error(w, "Invalid phone number or password", http.StatusUnauthorized)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to authenticate user", zap.Error(err))
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	h.respondWithToken(w, r, u, http.StatusOK)
}

// HandleLogout clears the auth cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user's profile
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to get user",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleRefresh issues a fresh token for the authenticated caller. The old
// token stays valid until it expires.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to get user",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to refresh token", http.StatusInternalServerError)
		return
	}

	h.respondWithToken(w, r, u, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, u *user.User, status int) {
	token, err := h.jwt.Generate(u.ID, u.PhoneNumber)
	if err != nil {
		logger.WithTrace(r.Context(), h.logger).Error("failed to generate token",
			zap.Int64("user_id", u.ID), zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.jwt.TTL().Seconds()),
	})

	writeJSON(w, status, AuthResponse{Token: token, User: toUserResponse(u)})
}

// Only set Secure when actually serving HTTPS
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
