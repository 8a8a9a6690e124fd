package notification

import (
	"context"
	"errors"
	"testing"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	UpsertDeviceTokenFunc           func(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error)
	GetActiveTokensByUserIDFunc     func(ctx context.Context, userID int64) ([]*DeviceToken, error)
	ListUserIDsWithActiveTokensFunc func(ctx context.Context) ([]int64, error)
	DeactivateTokenFunc             func(ctx context.Context, token string) error
}

func (m *MockRepository) UpsertDeviceToken(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error) {
	if m.UpsertDeviceTokenFunc != nil {
		return m.UpsertDeviceTokenFunc(ctx, params)
	}
	return &DeviceToken{ID: params.ID, UserID: params.UserID, Token: params.Token, Platform: params.Platform, Active: true}, nil
}

func (m *MockRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error) {
	if m.GetActiveTokensByUserIDFunc != nil {
		return m.GetActiveTokensByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) ListUserIDsWithActiveTokens(ctx context.Context) ([]int64, error) {
	if m.ListUserIDsWithActiveTokensFunc != nil {
		return m.ListUserIDsWithActiveTokensFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) DeactivateToken(ctx context.Context, token string) error {
	if m.DeactivateTokenFunc != nil {
		return m.DeactivateTokenFunc(ctx, token)
	}
	return nil
}

type MockMessenger struct {
	SendMulticastFunc func(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

func (m *MockMessenger) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	return m.SendMulticastFunc(ctx, tokens, title, body, data)
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  RegisterDeviceParams
		wantErr error
	}{
		{"Android", RegisterDeviceParams{UserID: 1, Token: "tok", Platform: "android"}, nil},
		{"Platform normalized", RegisterDeviceParams{UserID: 1, Token: "tok", Platform: " IOS "}, nil},
		{"Web", RegisterDeviceParams{UserID: 1, Token: "tok", Platform: "web"}, nil},
		{"Missing token", RegisterDeviceParams{UserID: 1, Token: "  ", Platform: "ios"}, ErrInvalidToken},
		{"Unknown platform", RegisterDeviceParams{UserID: 1, Token: "tok", Platform: "symbian"}, ErrInvalidPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&MockRepository{}, nil, nil)
			tok, err := svc.RegisterDevice(ctx, tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("RegisterDevice() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RegisterDevice() unexpected error: %v", err)
			}
			if tok.ID == "" {
				t.Error("RegisterDevice() should assign an ID")
			}
			if !IsValidPlatform(tok.Platform) {
				t.Errorf("RegisterDevice() platform = %q", tok.Platform)
			}
		})
	}
}

func TestSendToUser(t *testing.T) {
	ctx := context.Background()
	activeTokens := func(ctx context.Context, userID int64) ([]*DeviceToken, error) {
		return []*DeviceToken{{Token: "a"}, {Token: "b"}}, nil
	}

	t.Run("Sends to every active token", func(t *testing.T) {
		var got []string
		messenger := &MockMessenger{
			SendMulticastFunc: func(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
				got = tokens
				return len(tokens), nil
			},
		}
		svc := NewService(&MockRepository{GetActiveTokensByUserIDFunc: activeTokens}, messenger, nil)

		sent, err := svc.SendToUser(ctx, 1, TitleMorning, MorningReminder, nil)
		if err != nil {
			t.Fatalf("SendToUser() unexpected error: %v", err)
		}
		if sent != 2 || len(got) != 2 {
			t.Errorf("SendToUser() sent = %d to %v, want 2", sent, got)
		}
	})

	t.Run("No messenger skips", func(t *testing.T) {
		svc := NewService(&MockRepository{GetActiveTokensByUserIDFunc: activeTokens}, nil, nil)
		sent, err := svc.SendToUser(ctx, 1, "t", "b", nil)
		if err != nil || sent != 0 {
			t.Errorf("SendToUser() = %d, %v, want 0, nil", sent, err)
		}
	})

	t.Run("No tokens skips the messenger", func(t *testing.T) {
		messenger := &MockMessenger{
			SendMulticastFunc: func(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
				t.Fatal("messenger should not be called")
				return 0, nil
			},
		}
		svc := NewService(&MockRepository{}, messenger, nil)
		if _, err := svc.SendToUser(ctx, 1, "t", "b", nil); err != nil {
			t.Errorf("SendToUser() unexpected error: %v", err)
		}
	})

	t.Run("Messenger error is returned", func(t *testing.T) {
		boom := errors.New("fcm down")
		messenger := &MockMessenger{
			SendMulticastFunc: func(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
				return 0, boom
			},
		}
		svc := NewService(&MockRepository{GetActiveTokensByUserIDFunc: activeTokens}, messenger, nil)
		if _, err := svc.SendToUser(ctx, 1, "t", "b", nil); !errors.Is(err, boom) {
			t.Errorf("SendToUser() error = %v, want %v", err, boom)
		}
	})
}
