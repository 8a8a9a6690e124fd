package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/assistant"
	"flowfunds/internal/domain/insight"
	"flowfunds/internal/domain/ledger"
	"flowfunds/internal/domain/notification"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/domain/user"
	"flowfunds/internal/infrastructure/anthropic"
	"flowfunds/internal/infrastructure/firebase"
	"flowfunds/internal/infrastructure/memory"
	"flowfunds/internal/infrastructure/postgres"
	"flowfunds/internal/infrastructure/redis"
	httphandlers "flowfunds/internal/interfaces/http"
	"flowfunds/internal/interfaces/scheduler"
	"flowfunds/internal/shared/auth"
	"flowfunds/internal/shared/config"
)

// storage is the set of repositories behind one DB_DRIVER.
type storage struct {
	accounts     account.Repository
	transactions transaction.Repository
	uow          transaction.UnitOfWork
	users        user.Repository
	devices      notification.Repository
	close        func() error
}

// Dependencies holds all initialized application components.
type Dependencies struct {
	// Handlers
	HealthHandler       *httphandlers.HealthHandler
	AuthHandler         *httphandlers.AuthHandler
	AccountHandler      *httphandlers.AccountHandler
	TransactionHandler  *httphandlers.TransactionHandler
	DashboardHandler    *httphandlers.DashboardHandler
	NotificationHandler *httphandlers.NotificationHandler
	AssistantHandler    *httphandlers.AssistantHandler

	// Auth
	JWT *auth.JWT

	// Scheduler inputs
	NotificationService *notification.Service
	InsightService      *insight.Service
	Locker              scheduler.Locker

	closers []func() error
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	store, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, store.close)

	// Optional language model for categories, evening insights and chat
	var (
		classifier transaction.Classifier
		summarizer insight.Summarizer
		responder  assistant.Responder
		modelState func() string
	)
	if cfg.Classifier.APIKey != "" {
		client := anthropic.NewClient(anthropic.Config{
			APIKey:           cfg.Classifier.APIKey,
			Model:            cfg.Classifier.Model,
			MaxTokens:        cfg.Classifier.MaxTokens,
			BreakerFailures:  cfg.Classifier.BreakerFailures,
			BreakerOpenDelay: cfg.Classifier.BreakerOpenDelay,
		}, logger)
		classifier = anthropic.NewClassifier(client)
		summarizer = anthropic.NewSummarizer(client)
		responder = anthropic.NewAssistant(client)
		modelState = client.State
		logger.Info("language model enabled", zap.String("model", cfg.Classifier.Model))
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, categories fall back to " + transaction.FallbackCategory + " and chat replies with an apology")
	}

	// Optional push delivery
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fc, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, store.devices.DeactivateToken, logger)
		if err != nil {
			deps.Close()
			return nil, err
		}
		messenger = fc
		logger.Info("firebase messaging enabled")
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications are logged only")
	}

	// Optional cross-replica slot lock
	if cfg.Redis.Addr != "" {
		locker, err := redis.NewLocker(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			LockTTL:  cfg.Redis.LockTTL,
		}, logger)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Locker = locker
		deps.closers = append(deps.closers, locker.Close)
	}

	loc, err := time.LoadLocation(cfg.Insight.Location)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to load insight location: %w", err)
	}

	// Initialize domain services
	accountService := account.NewService(store.accounts)
	userService := user.NewService(store.users)
	ledgerService := ledger.NewService(store.accounts, store.transactions)
	poster := transaction.NewPoster(store.accounts, store.uow, classifier, logger, transaction.PosterConfig{
		ClassifierTimeout: cfg.Classifier.Timeout,
		ApplyTimeout:      cfg.Posting.ApplyTimeout,
	})
	deps.NotificationService = notification.NewService(store.devices, messenger, logger)
	deps.InsightService = insight.NewService(store.transactions, summarizer, loc, cfg.Classifier.Timeout, logger)
	assistantService := assistant.NewService(store.users, store.accounts, store.transactions, responder, cfg.Classifier.ChatTimeout, logger)

	// Initialize auth components
	deps.JWT = auth.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	// Initialize handlers
	deps.HealthHandler = httphandlers.NewHealthHandler(modelState)
	deps.AuthHandler = httphandlers.NewAuthHandler(userService, deps.JWT, logger)
	deps.AccountHandler = httphandlers.NewAccountHandler(accountService, logger)
	deps.TransactionHandler = httphandlers.NewTransactionHandler(poster, ledgerService, logger)
	deps.DashboardHandler = httphandlers.NewDashboardHandler(ledgerService, logger)
	deps.NotificationHandler = httphandlers.NewNotificationHandler(deps.NotificationService, logger)
	deps.AssistantHandler = httphandlers.NewAssistantHandler(assistantService, logger)

	return deps, nil
}

func openStorage(cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.New()
		return &storage{
			accounts:     store.Accounts(),
			transactions: store.Transactions(),
			uow:          store,
			users:        store.Users(),
			devices:      store.Devices(),
			close:        func() error { return nil },
		}, nil
	default:
		connStr := cfg.Database.ConnectionString()
		if cfg.Database.MigrateOnBoot {
			if err := postgres.Migrate(connStr); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied")
		}

		db, err := postgres.New(connStr)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to database",
			zap.String("host", cfg.Database.Host),
			zap.String("name", cfg.Database.DBName),
		)
		return &storage{
			accounts:     postgres.NewAccountRepository(db),
			transactions: postgres.NewTransactionRepository(db),
			uow:          postgres.NewUnitOfWork(db),
			users:        postgres.NewUserRepository(db),
			devices:      postgres.NewNotificationRepository(db),
			close:        db.Close,
		}, nil
	}
}

// Close releases all resources held by dependencies, last opened first.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}
