package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"node-linker/internal/domain"
)

type Scheduler interface {
	Start(context.Context, chan<- domain.RawLink)
	Stop() error
	IsHealthy() bool
}

// LinkSource returns the links to check on each tick. It may return a
// partial list together with an error.
type LinkSource interface {
	Load() ([]domain.RawLink, error)
}

type schedulerConfig struct {
	interval    time.Duration
	sendTimeout time.Duration
}

type defaultScheduler struct {
	source   LinkSource
	logger   *zap.Logger
	metrics  domain.MetricsCollector
	config   schedulerConfig
	mu       sync.RWMutex
	stopping bool
}

func NewScheduler(
	interval time.Duration,
	source LinkSource,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Scheduler {
	return &defaultScheduler{
		source:  source,
		logger:  logger.With(zap.String("component", "scheduler")),
		metrics: metrics,
		config: schedulerConfig{
			interval:    interval,
			sendTimeout: 5 * time.Second,
		},
	}
}

func (s *defaultScheduler) Start(ctx context.Context, jobs chan<- domain.RawLink) {
	ticker := time.NewTicker(s.config.interval)
	defer ticker.Stop()

	// Send initial batch of jobs
	if err := s.sendJobs(ctx, jobs); err != nil {
		s.logger.Error("failed to send initial jobs", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := s.sendJobs(ctx, jobs); err != nil {
				s.logger.Error("failed to send jobs", zap.Error(err))
				continue
			}
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

func (s *defaultScheduler) sendJobs(ctx context.Context, jobs chan<- domain.RawLink) error {
	s.mu.RLock()
	if s.stopping {
		s.mu.RUnlock()
		return fmt.Errorf("scheduler is stopping")
	}
	s.mu.RUnlock()

	links, err := s.source.Load()
	if err != nil {
		s.metrics.RecordSourceError()
		s.logger.Warn("link source incomplete", zap.Error(err))
	}

	for _, link := range links {
		select {
		case jobs <- link:
			s.logger.Debug("sent job",
				zap.String("link", string(link.Name)))
			s.metrics.RecordSchedulerJob(string(link.Name))
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.sendTimeout):
			return fmt.Errorf("timed out sending job for link %s", link.Name)
		}
	}
	return nil
}

func (s *defaultScheduler) Stop() error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	return nil
}

func (s *defaultScheduler) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.stopping
}
