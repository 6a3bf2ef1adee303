package worker

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"node-linker/internal/domain"
)

// Worker represents a single worker that processes link checks
type Worker interface {
	Start(context.Context)
	Stop()
}

type workerConfig struct {
	checkTimeout time.Duration
}

type worker struct {
	id         int
	jobs       <-chan domain.RawLink
	dispatcher domain.Dispatcher
	logger     *zap.Logger
	stopOnce   sync.Once
	stopChan   chan struct{}
	config     workerConfig
	metrics    domain.MetricsCollector
}

func NewWorker(
	id int,
	jobs <-chan domain.RawLink,
	dispatcher domain.Dispatcher,
	checkTimeout time.Duration,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Worker {
	return &worker{
		id:         id,
		jobs:       jobs,
		dispatcher: dispatcher,
		logger:     logger.With(zap.Int("worker_id", id)),
		stopChan:   make(chan struct{}),
		config: workerConfig{
			checkTimeout: checkTimeout,
		},
		metrics: metrics,
	}
}

func (w *worker) Start(ctx context.Context) {
	workerID := strconv.Itoa(w.id)
	w.metrics.RecordWorkerStart(workerID)
	defer w.metrics.RecordWorkerStop(workerID)

	w.logger.Debug("worker started")
	defer w.logger.Debug("worker stopped")

	for {
		select {
		case link, ok := <-w.jobs:
			if !ok {
				w.logger.Info("jobs channel closed")
				return
			}
			if err := w.processCheck(ctx, link); err != nil {
				w.logger.Warn("link check failed",
					zap.String("link", string(link.Name)),
					zap.Error(err))
			}
		case <-ctx.Done():
			w.logger.Info("context cancelled",
				zap.Error(ctx.Err()))
			return
		case <-w.stopChan:
			w.logger.Info("received stop signal")
			return
		}
	}
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

func (w *worker) processCheck(ctx context.Context, link domain.RawLink) error {
	result := w.newCheckResult(link)
	start := time.Now()

	defer func() {
		result.Check.TimeStamp = start
		result.Duration = time.Since(start)
		result.Completed = time.Now()
		w.dispatcher.Dispatch(result.Check)
		w.metrics.RecordCheck(result)
	}()

	ctx, cancel := context.WithTimeout(ctx, w.config.checkTimeout)
	defer cancel()

	v, err := w.verifyWithTimeout(ctx, link.URL)
	result.Check.Protocol = string(v.Protocol)
	result.Check.Canonical = v.Canonical
	result.Check.Status = v.Status
	if err != nil {
		result.Check.Error = err
		return err
	}

	w.logger.Debug("link verified",
		zap.String("link", string(link.Name)),
		zap.String("protocol", result.Check.Protocol),
		zap.String("canonical", v.Canonical))
	return nil
}

// verifyWithTimeout bounds a single verification so a pathological link
// cannot hold a worker past the job deadline.
func (w *worker) verifyWithTimeout(ctx context.Context, link string) (Verification, error) {
	type verifyResult struct {
		v   Verification
		err error
	}

	ch := make(chan verifyResult, 1)
	go func() {
		v, err := Verify(link)
		ch <- verifyResult{v, err}
	}()

	select {
	case <-ctx.Done():
		return Verification{Status: domain.StatusInvalid}, NewCheckError(StageVerify, "check timed out", ctx.Err())
	case result := <-ch:
		return result.v, result.err
	}
}

func (w *worker) newCheckResult(link domain.RawLink) domain.CheckResult {
	return domain.CheckResult{
		Check: domain.Check{
			Link:   link,
			Status: domain.StatusInvalid, // Default status
		},
	}
}

// IsUnstable reports whether err came from a link whose canonical form
// drifts between encodings.
func IsUnstable(err error) bool {
	return errors.Is(err, ErrUnstable)
}
