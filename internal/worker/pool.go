package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
)

const minJobBuffer = 16

type Pool struct {
	workers   []Worker
	scheduler Scheduler
	jobs      chan domain.RawLink
	logger    *zap.Logger
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	metrics   domain.MetricsCollector
	isStarted bool
	config    PoolConfig
}

type PoolConfig struct {
	WorkerCount     int
	JobBufferSize   int
	JobTimeout      time.Duration
	ShutdownTimeout time.Duration
}

func NewPool(
	cfg *config.Config,
	dispatcher domain.Dispatcher,
	scheduler Scheduler,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) (*Pool, error) {
	poolConfig := PoolConfig{
		WorkerCount:     cfg.Workers.Count,
		JobBufferSize:   max(len(cfg.Links)*2, minJobBuffer), // links_file entries are not known up front
		JobTimeout:      cfg.Workers.Timeout(),
		ShutdownTimeout: 30 * time.Second,
	}
	return newPool(poolConfig, dispatcher, scheduler, metrics, logger)
}

func newPool(
	poolConfig PoolConfig,
	dispatcher domain.Dispatcher,
	scheduler Scheduler,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) (*Pool, error) {
	if poolConfig.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", poolConfig.WorkerCount)
	}

	jobs := make(chan domain.RawLink, poolConfig.JobBufferSize)
	workers := make([]Worker, poolConfig.WorkerCount)

	for i := 0; i < poolConfig.WorkerCount; i++ {
		workers[i] = NewWorker(
			i,
			jobs,
			dispatcher,
			poolConfig.JobTimeout,
			metrics,
			logger,
		)
	}

	return &Pool{
		workers:   workers,
		scheduler: scheduler,
		jobs:      jobs,
		logger:    logger,
		metrics:   metrics,
		config:    poolConfig,
	}, nil
}

func (p *Pool) Start(_ context.Context) error {
	p.mu.Lock()
	if p.isStarted {
		p.mu.Unlock()
		return fmt.Errorf("worker pool already started")
	}
	p.isStarted = true

	p.logger.Debug("starting worker pool")

	// ctx only bounds startup; fx cancels it once OnStart returns. The
	// pool runs until Stop.
	poolCtx, cancel := context.WithCancel(context.Background())
	p.ctx = poolCtx
	p.cancel = cancel
	p.mu.Unlock()

	// Start scheduler
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.scheduler.Start(poolCtx, p.jobs)
	}()

	// Start workers
	for _, w := range p.workers {
		p.runWorker(poolCtx, w)
	}

	p.logger.Info("worker pool started",
		zap.Int("worker_count", len(p.workers)),
		zap.Int("job_buffer_size", cap(p.jobs)))

	return nil
}

func (p *Pool) runWorker(ctx context.Context, w Worker) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.handleWorkerPanic(w)
		w.Start(ctx)
	}()
}

func (p *Pool) Stop() error {
	p.mu.Lock()
	if !p.isStarted {
		p.mu.Unlock()
		return nil
	}
	p.isStarted = false
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	p.logger.Debug("stopping worker pool")

	if err := p.scheduler.Stop(); err != nil {
		p.logger.Warn("scheduler stop failed", zap.Error(err))
	}
	if cancel != nil {
		cancel()
	}

	// Wait for all goroutines with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debug("worker pool stopped gracefully")
	case <-time.After(p.config.ShutdownTimeout):
		return fmt.Errorf("worker pool shutdown timed out")
	}

	return nil
}

// handleWorkerPanic restarts a worker on the pool context after a panic.
func (p *Pool) handleWorkerPanic(w Worker) {
	if r := recover(); r != nil {
		p.logger.Error("worker panic recovered",
			zap.Any("panic", r),
			zap.Stack("stack"))

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.isStarted && p.ctx.Err() == nil {
			p.runWorker(p.ctx, w)
			p.logger.Info("worker restarted after panic")
		}
	}
}
