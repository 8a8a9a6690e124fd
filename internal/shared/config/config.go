package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	TLS        TLSConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Posting    PostingConfig
	Classifier ClassifierConfig
	Insight    InsightConfig
	Firebase   FirebaseConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type DatabaseConfig struct {
	Driver        string
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrateOnBoot bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type PostingConfig struct {
	ApplyTimeout time.Duration
}

// ClassifierConfig configures the language model used for categorization,
// daily insights and the chat assistant. An empty APIKey disables all three.
type ClassifierConfig struct {
	APIKey           string
	Model            string
	Timeout          time.Duration
	ChatTimeout      time.Duration
	MaxTokens        int64
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

type InsightConfig struct {
	Enabled      bool
	MorningTime  string
	EveningTime  string
	Location     string
	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
}

type FirebaseConfig struct {
	CredentialsFile string
}

type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	applyTimeout, err := time.ParseDuration(getEnv("POSTING_APPLY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTING_APPLY_TIMEOUT: %w", err)
	}

	classifierTimeout, err := time.ParseDuration(getEnv("CLASSIFIER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_TIMEOUT: %w", err)
	}
	chatTimeout, err := time.ParseDuration(getEnv("ASSISTANT_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASSISTANT_TIMEOUT: %w", err)
	}
	classifierMaxTokens, err := strconv.ParseInt(getEnv("CLASSIFIER_MAX_TOKENS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_MAX_TOKENS: %w", err)
	}
	breakerFailures, err := strconv.ParseUint(getEnv("CLASSIFIER_BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_BREAKER_FAILURES: %w", err)
	}
	breakerOpenDelay, err := time.ParseDuration(getEnv("CLASSIFIER_BREAKER_OPEN_DELAY", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_BREAKER_OPEN_DELAY: %w", err)
	}

	insightWorkers, err := strconv.Atoi(getEnv("INSIGHT_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSIGHT_WORKERS: %w", err)
	}
	insightJobDelay, err := time.ParseDuration(getEnv("INSIGHT_JOB_DELAY", "200ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSIGHT_JOB_DELAY: %w", err)
	}
	insightQueueSize, err := strconv.Atoi(getEnv("INSIGHT_QUEUE_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSIGHT_QUEUE_SIZE: %w", err)
	}

	lockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: splitList(getEnv("ALLOWED_HOSTS", "")),
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          dbPort,
			User:          getEnv("DB_USER", "flowfunds"),
			Password:      getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "flowfunds"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MigrateOnBoot: getBoolEnv("DB_MIGRATE_ON_BOOT", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    jwtTTL,
		},
		Posting: PostingConfig{
			ApplyTimeout: applyTimeout,
		},
		Classifier: ClassifierConfig{
			APIKey:           getEnv("ANTHROPIC_API_KEY", ""),
			Model:            getEnv("CLASSIFIER_MODEL", "claude-3-haiku-20240307"),
			Timeout:          classifierTimeout,
			ChatTimeout:      chatTimeout,
			MaxTokens:        classifierMaxTokens,
			BreakerFailures:  uint32(breakerFailures),
			BreakerOpenDelay: breakerOpenDelay,
		},
		Insight: InsightConfig{
			Enabled:      getBoolEnv("INSIGHT_ENABLED", true),
			MorningTime:  getEnv("INSIGHT_MORNING_TIME", "08:00"),
			EveningTime:  getEnv("INSIGHT_EVENING_TIME", "20:00"),
			Location:     getEnv("INSIGHT_TIMEZONE", "Africa/Douala"),
			WorkerCount:  insightWorkers,
			JobDelay:     insightJobDelay,
			QueueSize:    insightQueueSize,
			RunOnStartup: getBoolEnv("INSIGHT_RUN_ON_STARTUP", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			LockTTL:  lockTTL,
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "flowfunds-api"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that Load cannot express with defaults.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}
	if c.Posting.ApplyTimeout <= 0 {
		return fmt.Errorf("POSTING_APPLY_TIMEOUT must be positive")
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	if c.Classifier.ChatTimeout <= 0 {
		return fmt.Errorf("ASSISTANT_TIMEOUT must be positive")
	}
	if c.Insight.Enabled {
		for _, v := range []string{c.Insight.MorningTime, c.Insight.EveningTime} {
			if !isClock(v) {
				return fmt.Errorf("invalid insight schedule time %q (expected HH:MM)", v)
			}
		}
		if _, err := time.LoadLocation(c.Insight.Location); err != nil {
			return fmt.Errorf("invalid INSIGHT_TIMEZONE: %w", err)
		}
		if c.Insight.WorkerCount < 1 {
			return fmt.Errorf("INSIGHT_WORKERS must be at least 1")
		}
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func isClock(s string) bool {
	t, err := time.Parse("15:04", s)
	return err == nil && t.Format("15:04") == s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
