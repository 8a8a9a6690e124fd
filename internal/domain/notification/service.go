package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service contains the business logic for push delivery
type Service struct {
	repo      Repository
	messenger Messenger
	logger    *zap.Logger
}

// NewService creates a new notification service. messenger may be nil, in
// which case sends are logged and skipped.
func NewService(repo Repository, messenger Messenger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, messenger: messenger, logger: logger}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error) {
	params.Token = strings.TrimSpace(params.Token)
	params.Platform = strings.ToLower(strings.TrimSpace(params.Platform))
	if params.ID == "" {
		params.ID = uuid.New().String()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.UpsertDeviceToken(ctx, params)
}

// SendToUser pushes a notification to every active device of a user.
// Returns the number of devices that accepted it.
func (s *Service) SendToUser(ctx context.Context, userID int64, title, body string, data map[string]string) (int, error) {
	if userID <= 0 {
		return 0, errors.New("valid user ID is required")
	}

	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if len(tokens) == 0 {
		s.logger.Debug("no active device tokens", zap.Int64("user_id", userID))
		return 0, nil
	}

	if s.messenger == nil {
		s.logger.Info("push disabled, notification skipped",
			zap.Int64("user_id", userID),
			zap.String("title", title),
		)
		return 0, nil
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	sent, err := s.messenger.SendMulticast(ctx, tokenStrings, title, body, data)
	if err != nil {
		return 0, fmt.Errorf("failed to send to user %d: %w", userID, err)
	}
	return sent, nil
}

// Recipients lists the users that have at least one active device.
func (s *Service) Recipients(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDsWithActiveTokens(ctx)
}

// DeactivateToken disables a token the push provider no longer accepts.
func (s *Service) DeactivateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.repo.DeactivateToken(ctx, token)
}
