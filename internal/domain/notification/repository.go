package notification

import "context"

// Repository defines the interface for device token data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	// UpsertDeviceToken stores the token for params.UserID, reactivating it
	// and moving it over if another user held it.
	UpsertDeviceToken(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error)
	GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error)
	// ListUserIDsWithActiveTokens returns every user holding at least one active token.
	ListUserIDsWithActiveTokens(ctx context.Context) ([]int64, error)
	DeactivateToken(ctx context.Context, token string) error
}
