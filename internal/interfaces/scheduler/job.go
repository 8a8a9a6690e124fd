package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"flowfunds/internal/domain/insight"
	"flowfunds/internal/domain/notification"
)

// Job represents a unit of work that can be executed by the worker pool.
type Job interface {
	// Execute runs the job. Context should be respected for cancellation and timeouts.
	Execute(ctx context.Context) error

	// UserID returns the user the job works for, for logging.
	UserID() string

	// Description returns a human-readable description of the job.
	Description() string
}

// Notifier delivers pushes to every active device of a user.
type Notifier interface {
	SendToUser(ctx context.Context, userID int64, title, body string, data map[string]string) (int, error)
	Recipients(ctx context.Context) ([]int64, error)
}

// Insights builds the evening summary text.
type Insights interface {
	Location() *time.Location
	DailySummary(ctx context.Context, userID int64, day time.Time) (*insight.Summary, error)
	GenerateDailyInsight(ctx context.Context, sum insight.Summary) string
}

// ReminderJob sends the fixed morning reminder to one user.
type ReminderJob struct {
	userID   int64
	notifier Notifier
}

func NewReminderJob(userID int64, notifier Notifier) *ReminderJob {
	return &ReminderJob{userID: userID, notifier: notifier}
}

func (j *ReminderJob) Execute(ctx context.Context) error {
	_, err := j.notifier.SendToUser(ctx, j.userID, notification.TitleMorning, notification.MorningReminder,
		map[string]string{"type": "morning_reminder"})
	if err != nil {
		return fmt.Errorf("morning reminder failed: %w", err)
	}
	return nil
}

func (j *ReminderJob) UserID() string { return strconv.FormatInt(j.userID, 10) }

func (j *ReminderJob) Description() string {
	return fmt.Sprintf("Morning reminder for user %d", j.userID)
}

// InsightJob summarizes one user's spending for a day and pushes the result.
type InsightJob struct {
	userID   int64
	day      time.Time
	notifier Notifier
	insights Insights
}

func NewInsightJob(userID int64, day time.Time, notifier Notifier, insights Insights) *InsightJob {
	return &InsightJob{userID: userID, day: day, notifier: notifier, insights: insights}
}

func (j *InsightJob) Execute(ctx context.Context) error {
	sum, err := j.insights.DailySummary(ctx, j.userID, j.day)
	if err != nil {
		return fmt.Errorf("daily summary failed: %w", err)
	}

	body := j.insights.GenerateDailyInsight(ctx, *sum)

	_, err = j.notifier.SendToUser(ctx, j.userID, notification.TitleEvening, body, map[string]string{
		"type":  "daily_insight",
		"date":  sum.Day.Format(time.DateOnly),
		"total": sum.Total.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("daily insight failed: %w", err)
	}
	return nil
}

func (j *InsightJob) UserID() string { return strconv.FormatInt(j.userID, 10) }

func (j *InsightJob) Description() string {
	return fmt.Sprintf("Daily insight for user %d on %s", j.userID, j.day.Format(time.DateOnly))
}
