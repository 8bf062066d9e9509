package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool is stopped")

// Job is a unit of work. It receives the submitter's context.
type Job func(ctx context.Context) error

// PoolConfig holds configuration options for the pool.
type PoolConfig struct {
	// WorkerCount is the number of goroutines executing jobs.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize is how many submitted jobs may wait for a free worker
	// before Submit starts blocking.
	QueueSize int
}

// DefaultPoolConfig sizes the pool to the number of CPUs.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: runtime.NumCPU(),
		QueueSize:   64,
	}
}

type submission struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Pool runs submitted jobs on a fixed set of worker goroutines.
type Pool struct {
	jobs        chan submission
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewPool creates a pool. Workers do not run until Start is called.
func NewPool(config PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}
	queueSize := config.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		jobs:        make(chan submission, queueSize),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// WorkerCount reports the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workerCount
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop signals the workers to exit and waits for running jobs to finish.
// Jobs still queued are abandoned and their submitters get ErrPoolStopped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("stopping worker pool")
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

// Submit queues job and waits for its result. It returns ctx.Err() if the
// caller's context ends first; a job that has already started still runs
// to completion but its result is discarded.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	s := submission{ctx: ctx, job: job, done: make(chan error, 1)}

	select {
	case <-p.ctx.Done():
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- s:
	}

	select {
	case err := <-s.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		// The worker may still be running this job; prefer its result.
		select {
		case err := <-s.done:
			return err
		default:
			return ErrPoolStopped
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case s := <-p.jobs:
			s.done <- p.run(s)
		}
	}
}

func (p *Pool) run(s submission) (err error) {
	// The submitter has already given up.
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "panic", r)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return s.job(s.ctx)
}
