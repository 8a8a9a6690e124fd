package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/assistant"
	"flowfunds/internal/domain/user"
	"flowfunds/internal/infrastructure/memory"
)

// MockResponder implements assistant.Responder for testing
type MockResponder struct {
	AnswerFunc func(ctx context.Context, question string, snap assistant.Snapshot) (string, error)
}

func (m *MockResponder) Answer(ctx context.Context, question string, snap assistant.Snapshot) (string, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, snap)
	}
	return "", nil
}

// MockUserFinder implements assistant.UserFinder for testing
type MockUserFinder struct {
	GetByIDFunc func(ctx context.Context, id int64) (*user.User, error)
}

func (m *MockUserFinder) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func seedChatUser(t *testing.T) (*memory.Store, int64) {
	t.Helper()
	store := memory.New()
	u, _, err := store.Users().CreateWithInitialAccount(context.Background(),
		user.CreateParams{PhoneNumber: "+237699001122", FirstName: "Awa", PasswordHash: "x"},
		account.CreateParams{
			ID:             uuid.New().String(),
			Name:           user.InitialAccountName,
			Number:         "+237699001122",
			Type:           account.TypeMomo,
			Currency:       account.DefaultCurrency,
			InitialBalance: decimal.NewFromInt(12500),
		})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return store, u.ID
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		authenticated  bool
		responder      *MockResponder
		expectedStatus int
		expectedAnswer string
	}{
		{
			name:          "Success",
			method:        http.MethodPost,
			body:          `{"question":"  What is my balance?  "}`,
			authenticated: true,
			responder: &MockResponder{
				AnswerFunc: func(ctx context.Context, question string, snap assistant.Snapshot) (string, error) {
					if question != "What is my balance?" {
						t.Errorf("question = %q, want trimmed", question)
					}
					if snap.UserName != "Awa" || !snap.TotalBalance.Equal(decimal.NewFromInt(12500)) {
						t.Errorf("unexpected snapshot: %+v", snap)
					}
					return "You have 12,500 XAF.", nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedAnswer: "You have 12,500 XAF.",
		},
		{
			name:          "Responder Failure Apologizes",
			method:        http.MethodPost,
			body:          `{"question":"What is my balance?"}`,
			authenticated: true,
			responder: &MockResponder{
				AnswerFunc: func(context.Context, string, assistant.Snapshot) (string, error) {
					return "", errors.New("upstream down")
				},
			},
			expectedStatus: http.StatusOK,
			expectedAnswer: assistant.ApologyMessage,
		},
		{
			name:           "Empty Question",
			method:         http.MethodPost,
			body:           `{"question":"   "}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Question Too Long",
			method:         http.MethodPost,
			body:           `{"question":"` + strings.Repeat("a", assistant.MaxQuestionLength+1) + `"}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Body",
			method:         http.MethodPost,
			body:           `not json`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unauthenticated",
			method:         http.MethodPost,
			body:           `{"question":"Hi"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Method Not Allowed",
			method:         http.MethodGet,
			authenticated:  true,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, userID := seedChatUser(t)
			var responder assistant.Responder
			if tt.responder != nil {
				responder = tt.responder
			}
			svc := assistant.NewService(store.Users(), store.Accounts(), store.Transactions(), responder, 0, zap.NewNop())
			handler := NewAssistantHandler(svc, zap.NewNop())

			req, _ := http.NewRequest(tt.method, "/api/ai/chat", strings.NewReader(tt.body))
			if tt.authenticated {
				req = withUser(req, userID)
			}
			rr := httptest.NewRecorder()
			handler.HandleChat(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if rr.Code != http.StatusOK {
				return
			}

			var got ChatResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got.Answer != tt.expectedAnswer {
				t.Errorf("answer = %q, want %q", got.Answer, tt.expectedAnswer)
			}
			if got.Question != "What is my balance?" || got.Timestamp.IsZero() {
				t.Errorf("unexpected response: %+v", got)
			}
		})
	}
}

func TestHandleChat_SnapshotReadFailure(t *testing.T) {
	store, userID := seedChatUser(t)
	users := &MockUserFinder{
		GetByIDFunc: func(context.Context, int64) (*user.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := assistant.NewService(users, store.Accounts(), store.Transactions(), &MockResponder{}, 0, zap.NewNop())
	handler := NewAssistantHandler(svc, zap.NewNop())

	req, _ := http.NewRequest(http.MethodPost, "/api/ai/chat", strings.NewReader(`{"question":"Hi"}`))
	rr := httptest.NewRecorder()
	handler.HandleChat(rr, withUser(req, userID))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
	}
}
