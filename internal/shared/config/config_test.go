package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret-key")
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.JWT.Secret != "test-jwt-secret-key" {
		t.Errorf("JWT.Secret = %q, want %q", cfg.JWT.Secret, "test-jwt-secret-key")
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Errorf("JWT.TTL = %v, want 24h", cfg.JWT.TTL)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Posting.ApplyTimeout != 10*time.Second {
		t.Errorf("Posting.ApplyTimeout = %v, want 10s", cfg.Posting.ApplyTimeout)
	}
	if cfg.Classifier.Timeout != 5*time.Second {
		t.Errorf("Classifier.Timeout = %v, want 5s", cfg.Classifier.Timeout)
	}
	if cfg.Classifier.ChatTimeout != 20*time.Second {
		t.Errorf("Classifier.ChatTimeout = %v, want 20s", cfg.Classifier.ChatTimeout)
	}
	if cfg.Insight.MorningTime != "08:00" || cfg.Insight.EveningTime != "20:00" {
		t.Errorf("Insight times = %s/%s, want 08:00/20:00", cfg.Insight.MorningTime, cfg.Insight.EveningTime)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing JWT_SECRET, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"db port", "DB_PORT", "not-a-number"},
		{"driver", "DB_DRIVER", "sqlite"},
		{"jwt ttl", "JWT_TTL", "forever"},
		{"apply timeout", "POSTING_APPLY_TIMEOUT", "-1s"},
		{"classifier timeout", "CLASSIFIER_TIMEOUT", "soon"},
		{"assistant timeout", "ASSISTANT_TIMEOUT", "later"},
		{"morning time", "INSIGHT_MORNING_TIME", "8am"},
		{"evening time", "INSIGHT_EVENING_TIME", "25:00"},
		{"timezone", "INSIGHT_TIMEZONE", "Mars/Olympus"},
		{"workers", "INSIGHT_WORKERS", "0"},
		{"lock ttl", "REDIS_LOCK_TTL", "long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error for %s=%q, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_InsightDisabledSkipsScheduleValidation(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("INSIGHT_ENABLED", "false")
	t.Setenv("INSIGHT_MORNING_TIME", "whenever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Insight.Enabled {
		t.Error("Insight.Enabled should be false")
	}
}

func TestLoad_MemoryDriver(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DB_DRIVER", "MEMORY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q, want memory", cfg.Database.Driver)
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ALLOWED_HOSTS", "example.com, api.example.com, localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Server.AllowedHosts) != 3 {
		t.Errorf("AllowedHosts length = %d, want 3", len(cfg.Server.AllowedHosts))
	}
}

func TestLoad_TLSRequiresCertAndKey(t *testing.T) {
	tests := []struct {
		name     string
		certPath string
		keyPath  string
		wantErr  bool
	}{
		{"missing cert", "", "/etc/tls/key.pem", true},
		{"missing key", "/etc/tls/cert.pem", "", true},
		{"both set", "/etc/tls/cert.pem", "/etc/tls/key.pem", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)
			t.Setenv("TLS_ENABLED", "true")
			t.Setenv("TLS_CERT_PATH", tt.certPath)
			t.Setenv("TLS_KEY_PATH", tt.keyPath)

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !cfg.TLS.Enabled {
				t.Error("TLS.Enabled should be true")
			}
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"invalid", true, true},   // returns default
		{"invalid", false, false}, // returns default
		{"", true, true},          // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			got := getBoolEnv(key, tt.defVal)
			if got != tt.expected {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defVal, got, tt.expected)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	got := cfg.ConnectionString()
	if got != expected {
		t.Errorf("ConnectionString() = %q, want %q", got, expected)
	}
}
