// Package insight builds the end-of-day spending summary pushed to users.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"flowfunds/internal/domain/transaction"
)

const (
	Uncategorized = "Uncategorized"

	ZeroSpendMessage = "You spent 0 XAF today! That's a great step towards your savings goals. 🚀"

	DefaultSummarizerTimeout = 10 * time.Second
)

var printer = message.NewPrinter(language.English)

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Summary is a user's spending for one calendar day.
type Summary struct {
	UserID    int64
	Day       time.Time
	Total     decimal.Decimal
	Breakdown []CategoryTotal
}

// BreakdownText renders the breakdown as "Food: 5000.00, Transport: 1500.00".
func (s Summary) BreakdownText() string {
	parts := make([]string, 0, len(s.Breakdown))
	for _, c := range s.Breakdown {
		parts = append(parts, c.Category+": "+c.Amount.StringFixed(2))
	}
	return strings.Join(parts, ", ")
}

// Summarizer turns a summary into a short friendly sentence.
type Summarizer interface {
	Summarize(ctx context.Context, s Summary) (string, error)
}

// ExpenseReader is the transaction query the service needs.
type ExpenseReader interface {
	ListExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]*transaction.Transaction, error)
}

type Service struct {
	expenses   ExpenseReader
	summarizer Summarizer
	loc        *time.Location
	timeout    time.Duration
	logger     *zap.Logger
}

// NewService creates an insight service. Days are cut at midnight in loc.
// summarizer may be nil.
func NewService(expenses ExpenseReader, summarizer Summarizer, loc *time.Location, timeout time.Duration, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = DefaultSummarizerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{expenses: expenses, summarizer: summarizer, loc: loc, timeout: timeout, logger: logger}
}

// Location is the zone calendar days are computed in.
func (s *Service) Location() *time.Location { return s.loc }

// DailySummary totals the user's expenses dated on day.
func (s *Service) DailySummary(ctx context.Context, userID int64, day time.Time) (*Summary, error) {
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	txs, err := s.expenses.ListExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	sum := decimal.Zero
	for _, t := range txs {
		cat := strings.TrimSpace(t.Category)
		if cat == "" {
			cat = Uncategorized
		}
		totals[cat] = totals[cat].Add(t.Amount)
		sum = sum.Add(t.Amount)
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for cat, amt := range totals {
		breakdown = append(breakdown, CategoryTotal{Category: cat, Amount: amt})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if c := breakdown[i].Amount.Cmp(breakdown[j].Amount); c != 0 {
			return c > 0
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return &Summary{UserID: userID, Day: from, Total: sum, Breakdown: breakdown}, nil
}

// GenerateDailyInsight turns a summary into the evening notification body.
// It never fails: without a working summarizer it returns a fixed sentence.
func (s *Service) GenerateDailyInsight(ctx context.Context, sum Summary) string {
	if sum.Total.IsZero() {
		return ZeroSpendMessage
	}
	if s.summarizer == nil {
		return FallbackMessage(sum.Total)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.summarizer.Summarize(ctx, sum)
	if err != nil {
		s.logger.Warn("summarizer unavailable, using fallback text",
			zap.Int64("user_id", sum.UserID),
			zap.Error(err),
		)
		return FallbackMessage(sum.Total)
	}
	if text = strings.TrimSpace(text); text == "" {
		return FallbackMessage(sum.Total)
	}
	return text
}

// FallbackMessage is "You spent 12,500 XAF today. Keep tracking! 📝".
func FallbackMessage(total decimal.Decimal) string {
	return printer.Sprintf("You spent %d XAF today. Keep tracking! 📝", total.Round(0).IntPart())
}
