package transaction

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/money"
)

var (
	postTracer         = otel.Tracer("flowfunds/ledger")
	postMeter          = otel.Meter("flowfunds/ledger")
	postingTotal, _    = postMeter.Int64Counter("ledger.posting.total", metric.WithDescription("Postings by outcome kind"))
	postingDuration, _ = postMeter.Float64Histogram("ledger.posting.duration", metric.WithDescription("Posting duration in seconds"), metric.WithUnit("s"))
)

const (
	DefaultClassifierTimeout = 5 * time.Second
	DefaultApplyTimeout      = 10 * time.Second

	outcomeApplied = "Applied"
)

// PosterConfig holds the poster's time bounds. Zero values take the defaults.
type PosterConfig struct {
	ClassifierTimeout time.Duration
	ApplyTimeout      time.Duration
}

// Poster validates posting requests and applies them atomically.
//
// A request moves Received -> Validated -> Applied, or Received -> Rejected.
// The classifier runs after validation and before the unit of work opens, so
// no network call is ever made while a row lock is held.
type Poster struct {
	accounts   AccountFinder
	uow        UnitOfWork
	classifier Classifier
	logger     *zap.Logger

	classifierTimeout time.Duration
	applyTimeout      time.Duration
	now               func() time.Time
}

// NewPoster creates a poster. classifier may be nil, in which case every
// missing category resolves to FallbackCategory.
func NewPoster(accounts AccountFinder, uow UnitOfWork, classifier Classifier, log *zap.Logger, cfg PosterConfig) *Poster {
	if cfg.ClassifierTimeout <= 0 {
		cfg.ClassifierTimeout = DefaultClassifierTimeout
	}
	if cfg.ApplyTimeout <= 0 {
		cfg.ApplyTimeout = DefaultApplyTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poster{
		accounts:          accounts,
		uow:               uow,
		classifier:        classifier,
		logger:            log,
		classifierTimeout: cfg.ClassifierTimeout,
		applyTimeout:      cfg.ApplyTimeout,
		now:               time.Now,
	}
}

// Post validates req and applies it. The returned error is always a *Error.
func (p *Poster) Post(ctx context.Context, req PostRequest) (created *Transaction, err error) {
	ctx, span := postTracer.Start(ctx, "ledger.post")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", req.UserID),
		attribute.String("ledger.type", req.Type),
	)

	start := time.Now()
	defer func() {
		outcome := outcomeApplied
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			if !IsValidation(err) {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.SetAttributes(attribute.String("ledger.outcome", outcome))

		attrs := metric.WithAttributes(attribute.String("kind", outcome))
		postingTotal.Add(ctx, 1, attrs)
		postingDuration.Record(ctx, time.Since(start).Seconds(), attrs)

		fields := []zap.Field{
			zap.Int64("user_id", req.UserID),
			zap.String("account_id", req.AccountID),
			zap.String("type", req.Type),
			zap.String("outcome", outcome),
			zap.Duration("duration", time.Since(start)),
		}
		log := logger.WithTrace(ctx, p.logger)
		switch {
		case err == nil:
			log.Info("posting applied", append(fields, zap.String("transaction_id", created.ID))...)
		case IsValidation(err):
			log.Info("posting rejected", append(fields, zap.Error(err))...)
		default:
			log.Error("posting failed", append(fields, zap.Error(err))...)
		}
	}()

	src, err := p.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	category := p.resolveCategory(ctx, req)

	date := p.now()
	if req.Date != nil {
		date = *req.Date
	}
	params := CreateParams{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		AccountID: src.ID,
		Type:      req.Type,
		Amount:    req.Amount,
		Category:  category,
		Reason:    strings.TrimSpace(req.Reason),
		Date:      date,
	}

	// Past validation the caller can no longer abort the apply step.
	applyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.applyTimeout)
	defer cancel()

	created, err = p.apply(applyCtx, req, params)
	if err != nil {
		if IsValidation(err) {
			return nil, err
		}
		return nil, newError(KindPostingFailed, "posting failed, nothing was applied", err)
	}
	return created, nil
}

// validate runs the checks in order; the first failure wins.
func (p *Poster) validate(ctx context.Context, req PostRequest) (*account.Account, error) {
	if _, err := uuid.Parse(req.AccountID); err != nil {
		return nil, ErrInvalidAccount
	}
	src, err := p.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrInvalidAccount
		}
		return nil, newError(KindPostingFailed, "failed to load account", err)
	}
	if src.UserID != req.UserID {
		return nil, ErrInvalidAccount
	}

	if !money.IsPositive(req.Amount) {
		return nil, ErrInvalidAmount
	}

	if !IsValidType(req.Type) {
		return nil, ErrInvalidType
	}
	if req.Type == TypeSave && src.IsSavings() {
		return nil, newError(KindInvalidType, "cannot save from the savings account", nil)
	}

	if Debits(req.Type) && src.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrInvalidReason
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, newError(KindInvalidReason, "reason must be at most 255 characters", nil)
	}

	return src, nil
}

func (p *Poster) resolveCategory(ctx context.Context, req PostRequest) string {
	if c := strings.TrimSpace(req.Category); c != "" {
		return truncate(c, MaxCategoryLength)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return ""
	}
	if p.classifier == nil {
		return FallbackCategory
	}

	cctx, cancel := context.WithTimeout(ctx, p.classifierTimeout)
	defer cancel()

	label, err := p.classifier.Classify(cctx, reason)
	if err != nil {
		logger.WithTrace(ctx, p.logger).Warn("classifier unavailable, using fallback category",
			zap.String("kind", string(KindClassifierUnavailable)),
			zap.Error(newError(KindClassifierUnavailable, "classifier unavailable", err)),
		)
		return FallbackCategory
	}
	if label = NormalizeCategory(label); label == "" {
		return FallbackCategory
	}
	return label
}

func (p *Poster) apply(ctx context.Context, req PostRequest, params CreateParams) (*Transaction, error) {
	var created *Transaction

	err := p.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		src, err := tx.LockAccount(ctx, params.AccountID)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return ErrInvalidAccount
			}
			return err
		}
		if src.UserID != req.UserID {
			return ErrInvalidAccount
		}
		// The balance may have moved since validation.
		if Debits(params.Type) && src.Balance.LessThan(params.Amount) {
			return ErrInsufficientFunds
		}

		t, err := tx.InsertTransaction(ctx, params)
		if err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, src.ID, SourceDelta(params.Type, params.Amount)); err != nil {
			return err
		}

		if params.Type == TypeSave {
			ref := account.SavingsReference(req.UserPhone, req.UserID)
			savings, err := tx.FindOrCreateSavingsAccount(ctx, req.UserID, ref, src.Currency)
			if err != nil {
				return err
			}
			if _, err := tx.AdjustBalance(ctx, savings.ID, params.Amount); err != nil {
				return err
			}
		}

		t.AccountName = src.Name
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
