package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"flowfunds/internal/domain/notification"
	"flowfunds/internal/infrastructure/memory"
)

func TestHandleRegisterDevice(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		userID         int64
		body           string
		expectedStatus int
	}{
		{name: "Success", method: http.MethodPost, userID: 1, body: `{"token":"fcm-abc","platform":"android"}`, expectedStatus: http.StatusCreated},
		{name: "Platform Is Case Insensitive", method: http.MethodPost, userID: 1, body: `{"token":"fcm-abc","platform":"IOS"}`, expectedStatus: http.StatusCreated},
		{name: "Unknown Platform", method: http.MethodPost, userID: 1, body: `{"token":"fcm-abc","platform":"symbian"}`, expectedStatus: http.StatusBadRequest},
		{name: "Missing Token", method: http.MethodPost, userID: 1, body: `{"token":" ","platform":"web"}`, expectedStatus: http.StatusBadRequest},
		{name: "Invalid Body", method: http.MethodPost, userID: 1, body: `[`, expectedStatus: http.StatusBadRequest},
		{name: "Unauthorized", method: http.MethodPost, userID: 0, body: `{"token":"fcm-abc","platform":"web"}`, expectedStatus: http.StatusUnauthorized},
		{name: "Method Not Allowed", method: http.MethodGet, userID: 1, expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			handler := NewNotificationHandler(notification.NewService(store.Devices(), nil, zap.NewNop()), zap.NewNop())

			req, _ := http.NewRequest(tt.method, "/api/notifications/devices", strings.NewReader(tt.body))
			req = withUser(req, tt.userID)
			rr := httptest.NewRecorder()
			handler.HandleRegisterDevice(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if rr.Code != http.StatusCreated {
				return
			}

			tokens, err := store.Devices().GetActiveTokensByUserID(context.Background(), tt.userID)
			if err != nil {
				t.Fatalf("failed to list tokens: %v", err)
			}
			if len(tokens) != 1 || tokens[0].Token != "fcm-abc" {
				t.Errorf("unexpected tokens: %+v", tokens)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		modelState func() string
		expected   HealthResponse
	}{
		{name: "Without Model", expected: HealthResponse{Status: "ok"}},
		{
			name:       "With Model",
			modelState: func() string { return "open" },
			expected:   HealthResponse{Status: "ok", Model: "open"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			NewHealthHandler(tt.modelState).HandleHealth(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
			}
			var got HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}
