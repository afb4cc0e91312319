// Package reconciler re-enqueues pending schedule entries whose job was lost.
//
// A job can disappear between the record write and the publish, or with a
// broker that lost its non-replicated queues. The sweep runs on a cron spec
// and hands every entry overdue by more than the grace period back to the
// queue. Duplicates are harmless: the delivery handler drops a job whose
// entry is already sent.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/recurring-notifier/internal/config"
	"github.com/aliskhannn/recurring-notifier/internal/model"
	"github.com/aliskhannn/recurring-notifier/internal/rabbitmq/queue"
	"github.com/aliskhannn/recurring-notifier/internal/schedule"
)

type overdueLister interface {
	ListOverdueSchedules(ctx context.Context, before time.Time, limit int) ([]model.OverdueSchedule, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, msg queue.NotificationMessage, delay time.Duration) error
}

type Reconciler struct {
	repo  overdueLister
	queue jobQueue
	cfg   config.Reconciler
	loc   *time.Location
	now   func() time.Time
}

func New(repo overdueLister, q jobQueue, cfg config.Reconciler, loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}

	return &Reconciler{repo: repo, queue: q, cfg: cfg, loc: loc, now: time.Now}
}

// Sweep enqueues one immediate job per overdue entry and returns how many were enqueued.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	before := r.now().Add(-r.cfg.Grace)

	overdue, err := r.repo.ListOverdueSchedules(ctx, before, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list overdue schedules: %w", err)
	}

	enqueued := 0
	for _, o := range overdue {
		msg := jobFor(o, r.loc)

		if err := r.queue.Enqueue(ctx, msg, 0); err != nil {
			return enqueued, fmt.Errorf("enqueue entry %s: %w", o.Entry.ID, err)
		}

		enqueued++
	}

	return enqueued, nil
}

// Run sweeps on the configured cron spec until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(r.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(r.cfg.Spec, func() {
		n, err := r.Sweep(ctx)
		if err != nil {
			zlog.Logger.Error().Err(err).Int("enqueued", n).Msg("reconcile sweep failed")
			return
		}

		if n > 0 {
			zlog.Logger.Warn().Int("enqueued", n).Msg("re-enqueued overdue schedule entries")
		}
	})
	if err != nil {
		return fmt.Errorf("parse reconciler spec %q: %w", r.cfg.Spec, err)
	}

	c.Start()
	zlog.Logger.Info().Str("spec", r.cfg.Spec).Msg("reconciler started")

	<-ctx.Done()
	<-c.Stop().Done()
	zlog.Logger.Info().Msg("reconciler stopped")

	return nil
}

func jobFor(o model.OverdueSchedule, loc *time.Location) queue.NotificationMessage {
	at := o.Entry.ScheduledDateTime.In(loc)
	n := o.Notification

	return queue.NotificationMessage{
		JobID:           uuid.New(),
		NotificationID:  n.ID,
		SenderEmail:     n.SenderEmail,
		ReceiverEmail:   n.ReceiverEmail,
		Content:         n.Content,
		Recurring:       n.Recurring,
		Frequency:       n.Frequency,
		Date:            at.Format(schedule.DateLayout),
		Time:            at.Format(schedule.TimeLayout),
		ScheduleEntryID: o.Entry.ID,
	}
}
