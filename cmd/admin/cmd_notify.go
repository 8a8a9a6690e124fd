package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flowfunds/internal/domain/insight"
	"flowfunds/internal/domain/notification"
	"flowfunds/internal/infrastructure/anthropic"
	"flowfunds/internal/infrastructure/firebase"
	"flowfunds/internal/infrastructure/postgres"
	"flowfunds/internal/interfaces/scheduler"
)

var notifyCmd = &cobra.Command{
	Use:       "notify <morning|evening>",
	Short:     "Send a notification batch now",
	Long:      `Build and send one slot's batch in the foreground, bypassing the scheduler and its slot lock.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(scheduler.SlotMorning), string(scheduler.SlotEvening)},
	RunE:      notifyRun,
}

func init() {
	notifyCmd.Flags().String("date", "", "Day to summarize for the evening batch (YYYY-MM-DD, default today)")
}

func notifyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	slot, err := scheduler.ParseSlot(args[0])
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Insight.Location)
	if err != nil {
		return fmt.Errorf("failed to load insight location: %w", err)
	}
	day := time.Now().In(loc)
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		day, err = time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", s, err)
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	devices := postgres.NewNotificationRepository(db)

	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fc, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, devices.DeactivateToken, log)
		if err != nil {
			return err
		}
		messenger = fc
	} else {
		log.Warn("FIREBASE_CREDENTIALS_FILE not set, notifications are logged only")
	}

	var summarizer insight.Summarizer
	if cfg.Classifier.APIKey != "" {
		summarizer = anthropic.NewSummarizer(anthropic.NewClient(anthropic.Config{
			APIKey:           cfg.Classifier.APIKey,
			Model:            cfg.Classifier.Model,
			MaxTokens:        cfg.Classifier.MaxTokens,
			BreakerFailures:  cfg.Classifier.BreakerFailures,
			BreakerOpenDelay: cfg.Classifier.BreakerOpenDelay,
		}, log))
	}

	provider := scheduler.NewJobProvider(
		notification.NewService(devices, messenger, log),
		insight.NewService(postgres.NewTransactionRepository(db), summarizer, loc, cfg.Classifier.Timeout, log),
	)

	start := time.Now()
	sent, failed, err := provider.RunNow(ctx, slot, day)
	if err != nil {
		return err
	}

	log.Info("notification batch finished",
		zap.String("slot", string(slot)),
		zap.String("day", day.Format(time.DateOnly)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s batch: %d sent, %d failed\n", slot, sent, failed)
	return nil
}
