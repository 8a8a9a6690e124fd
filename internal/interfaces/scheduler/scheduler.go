package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Slot names one of the two daily notification batches.
type Slot string

const (
	SlotMorning Slot = "morning"
	SlotEvening Slot = "evening"
)

// ParseSlot accepts "morning" or "evening".
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotMorning:
		return SlotMorning, nil
	case SlotEvening:
		return SlotEvening, nil
	}
	return "", fmt.Errorf("unknown slot %q (expected morning or evening)", s)
}

// ScheduleTime represents a specific time of day when the scheduler should run.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a time string in HH:MM format.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	var hour, minute int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &minute)
	if err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}

	if hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute: %d (must be 0-59)", minute)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// Locker claims a slot across replicas. Only the claimant submits the batch.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// Config holds configuration for the scheduler.
type Config struct {
	MorningTime  string
	EveningTime  string
	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
	// Locker is optional; without one every replica runs every slot.
	Locker Locker
}

type slotTime struct {
	slot Slot
	at   ScheduleTime
}

// Scheduler runs the morning reminder and evening insight batches at fixed
// times of day in the insight service's location.
type Scheduler struct {
	workerPool *WorkerPool
	slots      []slotTime
	loc        *time.Location
	locker     Locker
	provider   *JobProvider
	runOnStart bool
	logger     *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastRun map[Slot]string
	mu      sync.Mutex
	now     func() time.Time
}

// NewScheduler creates a new scheduler with the given configuration.
func NewScheduler(cfg Config, notifier Notifier, insights Insights, logger *zap.Logger) (*Scheduler, error) {
	if notifier == nil || insights == nil {
		return nil, errors.New("scheduler requires a notifier and an insight service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	morning, err := ParseScheduleTime(cfg.MorningTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse morning time %q: %w", cfg.MorningTime, err)
	}
	evening, err := ParseScheduleTime(cfg.EveningTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse evening time %q: %w", cfg.EveningTime, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger.Info("scheduler initialized",
		zap.String("morning", morning.String()),
		zap.String("evening", evening.String()),
		zap.String("location", insights.Location().String()),
		zap.Int("workers", cfg.WorkerCount),
		zap.Duration("job_delay", cfg.JobDelay),
		zap.Bool("distributed_lock", cfg.Locker != nil),
	)

	return &Scheduler{
		workerPool: NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize, logger),
		slots:      []slotTime{{SlotMorning, morning}, {SlotEvening, evening}},
		loc:        insights.Location(),
		locker:     cfg.Locker,
		provider:   NewJobProvider(notifier, insights),
		runOnStart: cfg.RunOnStartup,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		lastRun:    make(map[Slot]string),
		now:        time.Now,
	}, nil
}

// Start launches the scheduler loop and worker pool.
func (s *Scheduler) Start() {
	s.workerPool.Start()

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runSlot(s.currentSlot(s.now().In(s.loc)), s.now())
		}()
	}

	s.wg.Add(1)
	go s.scheduleLoop()

	s.logger.Info("scheduler started")
}

// scheduleLoop is the main scheduling loop.
func (s *Scheduler) scheduleLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case now := <-ticker.C:
			if slot, ok := s.due(now); ok {
				s.logger.Info("scheduler triggered", zap.String("slot", string(slot)))
				s.runSlot(slot, now)
			}
		}
	}
}

// due reports which slot, if any, matches now. A slot fires at most once per day.
func (s *Scheduler) due(now time.Time) (Slot, bool) {
	local := now.In(s.loc)
	day := local.Format(time.DateOnly)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.slots {
		if local.Hour() != st.at.Hour || local.Minute() != st.at.Minute {
			continue
		}
		if s.lastRun[st.slot] == day {
			return "", false
		}
		s.lastRun[st.slot] = day
		return st.slot, true
	}
	return "", false
}

// currentSlot picks the batch that belongs to the time of day: evening once
// its time has passed, morning otherwise.
func (s *Scheduler) currentSlot(local time.Time) Slot {
	for _, st := range s.slots {
		if st.slot != SlotEvening {
			continue
		}
		if local.Hour() > st.at.Hour || (local.Hour() == st.at.Hour && local.Minute() >= st.at.Minute) {
			return SlotEvening
		}
	}
	return SlotMorning
}

// SlotKey identifies one run of a slot, e.g. "evening:2026-03-10".
func SlotKey(slot Slot, day time.Time) string {
	return string(slot) + ":" + day.Format(time.DateOnly)
}

// runSlot claims the slot, builds its jobs and submits them to the pool.
func (s *Scheduler) runSlot(slot Slot, now time.Time) int {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	local := now.In(s.loc)
	key := SlotKey(slot, local)
	log := s.logger.With(zap.String("slot", string(slot)), zap.String("key", key))

	if s.locker != nil {
		ok, err := s.locker.Acquire(ctx, key)
		if err != nil {
			log.Error("failed to claim slot, skipping", zap.Error(err))
			return 0
		}
		if !ok {
			log.Info("slot claimed by another replica")
			return 0
		}
	}

	jobs, err := s.provider.Jobs(ctx, slot, local)
	if err != nil {
		log.Error("failed to fetch jobs", zap.Error(err))
		return 0
	}
	if len(jobs) == 0 {
		log.Info("no recipients for slot")
		return 0
	}

	return s.workerPool.SubmitBatch(jobs)
}

// TriggerNow runs a slot immediately, bypassing the daily dedup but not the lock.
func (s *Scheduler) TriggerNow(slot Slot) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSlot(slot, s.now())
	}()
}

// Shutdown gracefully stops the scheduler and worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("timeout waiting for scheduler loop to stop")
	}

	s.workerPool.ShutdownWithTimeout(timeout)
	s.logger.Info("scheduler stopped")
}

// NextRun returns the next time any slot fires.
func (s *Scheduler) NextRun() time.Time {
	now := s.now().In(s.loc)

	var next time.Time
	for _, st := range s.slots {
		t := time.Date(now.Year(), now.Month(), now.Day(), st.at.Hour, st.at.Minute, 0, 0, s.loc)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next
}
