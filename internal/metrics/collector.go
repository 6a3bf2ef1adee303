package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/domain"
	"node-linker/internal/worker"
)

// Module provides the metrics collector
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(func(r *prometheus.Registry) prometheus.Registerer { return r }),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
	fx.Invoke(registerServer),
)

// NewRegistry returns a registry carrying the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

type Collector struct {
	logger          *zap.Logger
	checksTotal     *prometheus.CounterVec
	checksDuration  *prometheus.HistogramVec
	lastCheckStatus *prometheus.GaugeVec
	workerStarts    *prometheus.CounterVec
	workerStops     *prometheus.CounterVec
	activeWorkers   prometheus.Gauge
	jobsScheduled   *prometheus.CounterVec
	checkErrors     *prometheus.CounterVec
	sourceErrors    prometheus.Counter
}

func NewCollector(reg prometheus.Registerer, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		logger: logger,
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "node_checks_total",
				Help: "Total number of link checks performed",
			},
			[]string{"status", "link_name", "protocol"},
		),
		checksDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "node_check_duration_seconds",
				Help:    "Duration of link checks",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"link_name"},
		),
		lastCheckStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "node_check_status",
				Help: "Latest check status (1 valid, 0.5 unstable, 0 invalid)",
			},
			[]string{"link_name"},
		),
		workerStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "node_worker_starts_total",
				Help: "Total number of worker starts",
			},
			[]string{"worker_id"},
		),
		workerStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "node_worker_stops_total",
				Help: "Total number of worker stops",
			},
			[]string{"worker_id"},
		),
		activeWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "node_active_workers",
				Help: "Number of currently active workers",
			},
		),
		jobsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "node_jobs_scheduled_total",
				Help: "Total number of jobs scheduled",
			},
			[]string{"link_name"},
		),
		checkErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "node_check_errors_total",
				Help: "Total number of failed checks by stage",
			},
			[]string{"link_name", "stage"},
		),
		sourceErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "node_link_source_errors_total",
				Help: "Total number of failed links file reloads",
			},
		),
	}
}

func (c *Collector) RecordCheck(result domain.CheckResult) {
	linkName := string(result.Check.Link.Name)
	c.checksTotal.WithLabelValues(result.Check.Status, linkName, result.Check.Protocol).Inc()
	c.checksDuration.WithLabelValues(linkName).Observe(result.Duration.Seconds())
	c.lastCheckStatus.WithLabelValues(linkName).Set(statusValue(result.Check.Status))

	if result.Check.Error != nil {
		c.checkErrors.WithLabelValues(linkName, errorStage(result.Check.Error)).Inc()
	}
}

func (c *Collector) RecordWorkerStart(workerID string) {
	c.workerStarts.WithLabelValues(workerID).Inc()
	c.activeWorkers.Inc()
}

func (c *Collector) RecordWorkerStop(workerID string) {
	c.workerStops.WithLabelValues(workerID).Inc()
	c.activeWorkers.Dec()
}

func (c *Collector) RecordSchedulerJob(linkName string) {
	c.jobsScheduled.WithLabelValues(linkName).Inc()
}

func (c *Collector) RecordSourceError() {
	c.sourceErrors.Inc()
}

func statusValue(status string) float64 {
	switch status {
	case domain.StatusValid:
		return 1
	case domain.StatusUnstable:
		return 0.5
	default:
		return 0
	}
}

func errorStage(err error) string {
	var checkErr *worker.CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Stage
	}
	return "unknown"
}
