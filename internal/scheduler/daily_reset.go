// Package scheduler runs the periodic daily-task reset.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/projecthub/internal/queue"
)

// Resetter closes a calendar day for all daily tasks.
type Resetter interface {
	ResetAll(ctx context.Context, day time.Time) (int64, error)
}

// DailyReset wires a Resetter to a cron schedule evaluated in UTC.
type DailyReset struct {
	resetter Resetter
	events   *queue.Emitter
	log      *zap.Logger
	onDone   func()
	now      func() time.Time
	timeout  time.Duration
}

// NewDailyReset returns a job that closes the previous day on each run.
// onDone, when set, is called after every successful run.
func NewDailyReset(r Resetter, events *queue.Emitter, log *zap.Logger, onDone func()) *DailyReset {
	return &DailyReset{
		resetter: r,
		events:   events,
		log:      log,
		onDone:   onDone,
		now:      time.Now,
		timeout:  time.Minute,
	}
}

// closingDay is the UTC day that just ended.  Runs fire at or just after
// midnight, so a minute is subtracted before truncating.
func closingDay(t time.Time) time.Time {
	t = t.UTC().Add(-time.Minute)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Run performs one reset.
func (j *DailyReset) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	day := closingDay(j.now())
	n, err := j.resetter.ResetAll(ctx, day)
	if err != nil {
		j.log.Error("daily reset failed", zap.String("day", day.Format(time.DateOnly)), zap.Error(err))
		return err
	}
	j.log.Info("daily reset done", zap.String("day", day.Format(time.DateOnly)), zap.Int64("history_rows", n))
	if j.events != nil {
		j.events.Emit(queue.ActivityEvent{Type: queue.DailyTasksReset, Count: n})
	}
	if j.onDone != nil {
		j.onDone()
	}
	return nil
}

// Start schedules the job on spec and stops the scheduler when ctx ends.
func (j *DailyReset) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, func() { _ = j.Run(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
