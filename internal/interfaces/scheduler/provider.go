package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunNowConcurrency bounds how many jobs RunNow executes at once.
const RunNowConcurrency = 8

// JobProvider turns a slot into one job per user with an active device.
type JobProvider struct {
	notifier Notifier
	insights Insights
}

func NewJobProvider(notifier Notifier, insights Insights) *JobProvider {
	return &JobProvider{notifier: notifier, insights: insights}
}

// Jobs lists the recipients and builds their jobs. day selects the calendar
// day summarized by evening jobs.
func (p *JobProvider) Jobs(ctx context.Context, slot Slot, day time.Time) ([]Job, error) {
	users, err := p.notifier.Recipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	jobs := make([]Job, 0, len(users))
	for _, id := range users {
		switch slot {
		case SlotMorning:
			jobs = append(jobs, NewReminderJob(id, p.notifier))
		case SlotEvening:
			jobs = append(jobs, NewInsightJob(id, day, p.notifier, p.insights))
		default:
			return nil, fmt.Errorf("unknown slot %q", slot)
		}
	}
	return jobs, nil
}

// RunNow executes a slot's jobs, at most RunNowConcurrency at a time, and
// returns how many succeeded. The operator CLI uses it to send a batch by hand.
func (p *JobProvider) RunNow(ctx context.Context, slot Slot, day time.Time) (sent int, failed int, err error) {
	jobs, err := p.Jobs(ctx, slot, day)
	if err != nil {
		return 0, 0, err
	}

	var ok, ko atomic.Int64
	var g errgroup.Group
	g.SetLimit(RunNowConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			// A failed push does not stop the rest of the batch.
			if err := job.Execute(ctx); err != nil {
				ko.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	g.Wait()

	return int(ok.Load()), int(ko.Load()), nil
}
