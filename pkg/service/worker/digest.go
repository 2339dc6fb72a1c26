package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/secmon-lab/avsafe/pkg/utils/errutil"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
)

// DefaultDigestSchedule runs the digest every evening at 23:00 UTC
const DefaultDigestSchedule = "0 23 * * *"

// Digester produces one SLA digest for the given reference time
type Digester interface {
	SendDigest(ctx context.Context, now time.Time) error
}

// DigestWorker runs the SLA digest on a cron schedule.
//
// Runs are not coordinated across instances; deploy a single scheduler.
type DigestWorker struct {
	digester Digester
	schedule string
	location *time.Location
	now      func() time.Time

	cron   *cron.Cron
	stopCh chan struct{}
	doneCh chan struct{}
}

type DigestOption func(*DigestWorker)

func WithLocation(loc *time.Location) DigestOption {
	return func(w *DigestWorker) {
		w.location = loc
	}
}

func WithClock(now func() time.Time) DigestOption {
	return func(w *DigestWorker) {
		w.now = now
	}
}

// NewDigestWorker validates schedule, a standard five field cron expression
func NewDigestWorker(digester Digester, schedule string, opts ...DigestOption) (*DigestWorker, error) {
	if schedule == "" {
		schedule = DefaultDigestSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, goerr.Wrap(err, "invalid digest schedule", goerr.V("schedule", schedule))
	}

	w := &DigestWorker{
		digester: digester,
		schedule: schedule,
		location: time.UTC,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the job and returns without blocking
func (w *DigestWorker) Start(ctx context.Context) error {
	w.cron = cron.New(cron.WithLocation(w.location))
	if _, err := w.cron.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return goerr.Wrap(err, "failed to register digest job", goerr.V("schedule", w.schedule))
	}

	logging.Default().Info("SLA digest worker starting", "schedule", w.schedule)
	w.cron.Start()

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for a running digest to finish
func (w *DigestWorker) Stop() {
	logging.Default().Info("SLA digest worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("SLA digest worker stopped")
}

func (w *DigestWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	select {
	case <-w.stopCh:
	case <-ctx.Done():
		logging.Default().Info("SLA digest worker context cancelled")
	}

	<-w.cron.Stop().Done()
}

// RunOnce sends a digest immediately. Failures are reported, not returned,
// so the schedule keeps running.
func (w *DigestWorker) RunOnce(ctx context.Context) {
	started := w.now().In(w.location)
	if err := w.digester.SendDigest(ctx, started); err != nil {
		errutil.Handle(ctx, err, "SLA digest failed (will retry on next schedule)")
		return
	}
	logging.From(ctx).Info("SLA digest sent", "duration", time.Since(started).String())
}
