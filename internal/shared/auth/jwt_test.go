package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)

	userID := int64(123)
	phone := "+237699001122"

	token, err := j.Generate(userID, phone)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	claims, err := j.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Validate() got UserID %d, want %d", claims.UserID, userID)
	}
	if claims.Phone != phone {
		t.Errorf("Validate() got Phone %s, want %s", claims.Phone, phone)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".invalid-signature"
	if _, err := j.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() tampered signature error = %v, want %v", err, ErrInvalidToken)
	}

	if _, err := j.Validate("invalid.token"); err == nil {
		t.Error("Validate() accepted invalid format")
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	token, _ := NewJWT("secret-a", time.Hour).Generate(1, "1")
	if _, err := NewJWT("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := NewJWT("my-secret-key", time.Hour)
	j.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	token, err := j.Generate(1, "690000000")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	_, err = j.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() error = %v, want %v", err, ErrTokenExpired)
	}
}

func TestNewJWT_DefaultTTL(t *testing.T) {
	if got := NewJWT("s", 0).TTL(); got != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", got, DefaultTokenTTL)
	}
}
