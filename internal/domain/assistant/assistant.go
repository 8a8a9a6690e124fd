// Package assistant answers free-form questions about a user's money from a
// snapshot of their accounts and recent transactions.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/domain/user"
	"flowfunds/internal/shared/logger"
)

const (
	MaxQuestionLength = 500

	// HistoryWindow is how far back the snapshot reads transactions.
	HistoryWindow = 30 * 24 * time.Hour

	ApologyMessage = "I'm sorry, I encountered an error processing your question. Please try again."

	DefaultResponderTimeout = 20 * time.Second

	anonymousName = "User"
)

var ErrInvalidQuestion = errors.New("question is required and must be at most 500 characters")

// Snapshot is the financial context handed to the responder.
type Snapshot struct {
	UserName     string
	Accounts     []*account.Account
	Transactions []*transaction.Transaction // newest first
	TotalBalance decimal.Decimal
}

// Totals sums income and expenses over the snapshot's transactions. Saves
// count as neither.
func (s Snapshot) Totals() (income, expenses decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, t := range s.Transactions {
		switch t.Type {
		case transaction.TypeIncome:
			income = income.Add(t.Amount)
		case transaction.TypeExpense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses
}

// Responder answers a question given a snapshot.
type Responder interface {
	Answer(ctx context.Context, question string, snap Snapshot) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, question string, snap Snapshot) (string, error)

func (f ResponderFunc) Answer(ctx context.Context, question string, snap Snapshot) (string, error) {
	return f(ctx, question, snap)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type AccountLister interface {
	ListActiveByUserID(ctx context.Context, userID int64) ([]*account.Account, error)
}

type TransactionLister interface {
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error)
}

// Reply is one answered question.
type Reply struct {
	Question  string
	Answer    string
	Timestamp time.Time
}

type Service struct {
	users        UserFinder
	accounts     AccountLister
	transactions TransactionLister
	responder    Responder
	timeout      time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewService creates the assistant. responder may be nil, in which case
// every question gets ApologyMessage.
func NewService(users UserFinder, accounts AccountLister, transactions TransactionLister, responder Responder, timeout time.Duration, l *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultResponderTimeout
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		responder:    responder,
		timeout:      timeout,
		now:          time.Now,
		logger:       l,
	}
}

// NormalizeQuestion trims q and checks its length.
func NormalizeQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" || utf8.RuneCountInString(q) > MaxQuestionLength {
		return "", ErrInvalidQuestion
	}
	return q, nil
}

// Chat answers question for userID. Only invalid questions and snapshot
// read failures are returned as errors; a failing responder yields
// ApologyMessage.
func (s *Service) Chat(ctx context.Context, userID int64, question string) (*Reply, error) {
	q, err := NormalizeQuestion(question)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap, err := s.Snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &Reply{Question: q, Answer: s.answer(ctx, userID, q, *snap), Timestamp: now}, nil
}

// Snapshot reads the user's name, active accounts and the transactions
// dated within HistoryWindow before now. The three reads run concurrently.
func (s *Service) Snapshot(ctx context.Context, userID int64, now time.Time) (*Snapshot, error) {
	var (
		u        *user.User
		accounts []*account.Account
		history  []*transaction.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if u, err = s.users.GetByID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if accounts, err = s.accounts.ListActiveByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if history, err = s.transactions.ListByUserID(gctx, userID, 0); err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	since := now.Add(-HistoryWindow)
	recent := make([]*transaction.Transaction, 0, len(history))
	for _, t := range history {
		if t.Date.Before(since) {
			break
		}
		recent = append(recent, t)
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	name := strings.TrimSpace(u.FirstName)
	if name == "" {
		name = anonymousName
	}

	return &Snapshot{
		UserName:     name,
		Accounts:     accounts,
		Transactions: recent,
		TotalBalance: total,
	}, nil
}

func (s *Service) answer(ctx context.Context, userID int64, question string, snap Snapshot) string {
	if s.responder == nil {
		return ApologyMessage
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.responder.Answer(rctx, question, snap)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("assistant unavailable",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return ApologyMessage
	}
	if text = strings.TrimSpace(text); text == "" {
		return ApologyMessage
	}
	return text
}
