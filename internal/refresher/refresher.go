package refresher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stock-advisor/internal/logger"
)

// Job is a unit of background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// Refresher runs jobs on cron schedules, detached from request goroutines.
// A job still running when its next tick fires is skipped.
type Refresher struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func New() *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers job at a fixed interval.
func (r *Refresher) Every(interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("refresher: interval must be positive for %s", job.Name())
	}
	return r.Add("@every "+interval.String(), job)
}

// Add registers job on a cron spec such as "@hourly" or "0 3 * * *".
func (r *Refresher) Add(spec string, job Job) error {
	_, err := r.cron.AddFunc(spec, func() { r.RunNow(job) })
	if err != nil {
		return fmt.Errorf("refresher: schedule %s %q: %w", job.Name(), spec, err)
	}
	logger.Info(r.ctx, "Job registered", "job", job.Name(), "schedule", spec)
	return nil
}

// RunNow executes job immediately on the caller's goroutine.
func (r *Refresher) RunNow(job Job) {
	timer := logger.StartOperation(r.ctx, "refresher."+job.Name())
	if err := job.Run(timer.GetContext()); err != nil {
		timer.EndWithError(err)
		return
	}
	timer.End()
}

func (r *Refresher) Start() {
	r.cron.Start()
	logger.Info(r.ctx, "Refresher started", "jobs", len(r.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return.
func (r *Refresher) Stop() {
	r.once.Do(func() {
		r.cancel()
		<-r.cron.Stop().Done()
		logger.Info(context.Background(), "Refresher stopped")
	})
}
