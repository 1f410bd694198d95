package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single firing; delivery retries are the slow path.
const jobTimeout = 10 * time.Minute

var ErrDuplicateJob = errors.New("job id already registered")
var ErrJobNotFound = errors.New("job id not registered")

// JobFunc is one schedulable job body. It receives a bounded context and
// reports failure instead of panicking; panics are still recovered by the
// cron chain so one bad job never takes the orchestrator down.
type JobFunc func(ctx context.Context) error

// Orchestrator owns named cron jobs in a fixed time zone. Job bodies are
// individually triggerable so operators and tests can run them without
// waiting on the clock.
type Orchestrator struct {
	cronEngine *cron.Cron
	logger     *logrus.Logger

	// baseCtx parents every cron-fired job context so Stop can cancel
	// in-flight work, including retry backoff sleeps.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu   sync.Mutex
	jobs map[string]JobFunc
}

func New(loc *time.Location, logger *logrus.Logger) *Orchestrator {
	cronLog := cron.PrintfLogger(logger)
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			// Recover keeps a panicking job from killing the process;
			// SkipIfStillRunning prevents overlapping runs of one job id.
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
		jobs:    make(map[string]JobFunc),
	}
}

// Register adds a named job. Registering the same id twice fails, which
// guards against duplicate firing at the same instant.
func (o *Orchestrator) Register(id, spec string, run JobFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.jobs[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, id)
	}

	_, err := o.cronEngine.AddFunc(spec, func() {
		o.execute(id, run)
	})
	if err != nil {
		return fmt.Errorf("could not add job %s with spec %q: %w", id, spec, err)
	}
	o.jobs[id] = run
	o.logger.WithFields(logrus.Fields{"job": id, "spec": spec}).Info("Scheduled job registered")
	return nil
}

// TriggerNow runs a registered job body synchronously, outside its
// schedule. Used for operator test sends.
func (o *Orchestrator) TriggerNow(ctx context.Context, id string) error {
	o.mu.Lock()
	run, exists := o.jobs[id]
	o.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	o.logger.WithField("job", id).Info("Manually triggering job")
	return run(ctx)
}

func (o *Orchestrator) execute(id string, run JobFunc) {
	ctx, cancel := context.WithTimeout(o.baseCtx, jobTimeout)
	defer cancel()

	o.logger.WithField("job", id).Info("Cron job triggered")
	if err := run(ctx); err != nil {
		// Logged, not rethrown: the next scheduled firing must still occur.
		o.logger.WithField("job", id).Errorf("Job failed: %v", err)
		return
	}
	o.logger.WithField("job", id).Info("Job completed")
}

func (o *Orchestrator) Start() {
	o.cronEngine.Start()
	o.logger.Info("Notification orchestrator started")
}

// Stop cancels in-flight jobs, halts scheduling and waits for the jobs
// to wind down. Cancellation reaches backoff sleeps inside job bodies,
// so shutdown is not held up by pending delivery retries.
func (o *Orchestrator) Stop() {
	o.logger.Info("Stopping notification orchestrator...")
	o.cancel()
	ctx := o.cronEngine.Stop()
	<-ctx.Done()
	o.logger.Info("Notification orchestrator gracefully stopped")
}
