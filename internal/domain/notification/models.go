package notification

import (
	"errors"
	"strings"
	"time"
)

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"

	TitleMorning = "Daily Reminder"
	TitleEvening = "Daily Summary"

	MorningReminder = "Good morning! ☀️ Don't forget to track your expenses today to stay on budget."
)

var validPlatforms = map[string]struct{}{
	PlatformIOS:     {},
	PlatformAndroid: {},
	PlatformWeb:     {},
}

// Domain errors
var (
	ErrDeviceTokenNotFound = errors.New("device token not found")
	ErrInvalidPlatform     = errors.New("platform must be 'ios', 'android' or 'web'")
	ErrInvalidToken        = errors.New("device token is required")
)

// DeviceToken represents a registered FCM device token
type DeviceToken struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterDeviceParams contains parameters for registering a device
type RegisterDeviceParams struct {
	ID       string
	UserID   int64
	Token    string
	Platform string
}

func (p RegisterDeviceParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if strings.TrimSpace(p.Token) == "" {
		return ErrInvalidToken
	}
	if !IsValidPlatform(p.Platform) {
		return ErrInvalidPlatform
	}
	return nil
}

func IsValidPlatform(p string) bool {
	_, ok := validPlatforms[p]
	return ok
}
