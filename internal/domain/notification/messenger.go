package notification

import "context"

// Messenger defines the interface for sending push notifications.
// Implemented by the Firebase FCM client in the infrastructure layer.
type Messenger interface {
	// SendMulticast delivers one notification to many tokens and returns how
	// many were accepted. Tokens the provider rejects as stale are dropped by
	// the implementation.
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}
