// Package redis provides the distributed slot lock used by the scheduler when
// several API replicas run side by side.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix      = "flowfunds:lock:"
	DefaultLockTTL = 5 * time.Minute
)

type Config struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

// Locker claims named slots with the RedLock algorithm. A claim is never
// released: it expires after the TTL, so a replica whose clock runs late
// cannot claim the same slot again.
type Locker struct {
	client *goredislib.Client
	rs     *redsync.Redsync
	ttl    time.Duration
	logger *zap.Logger
}

// NewLocker connects to Redis and verifies the connection.
func NewLocker(ctx context.Context, cfg Config, logger *zap.Logger) (*Locker, error) {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := goredislib.NewClient(&goredislib.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Locker{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    cfg.LockTTL,
		logger: logger,
	}, nil
}

// Acquire reports whether this process won the slot named key. Losing to
// another holder is not an error.
func (l *Locker) Acquire(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, errors.New("lock key cannot be empty")
	}

	mutex := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			l.logger.Debug("slot already claimed by another replica", zap.String("key", key))
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	l.logger.Debug("slot claimed", zap.String("key", key), zap.Duration("ttl", l.ttl))
	return true, nil
}

func (l *Locker) Close() error {
	return l.client.Close()
}

// redsync reports contention either as ErrFailed or as an ErrTaken whose
// message says the lock is already taken.
func isContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
