package ecs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// buildObserverChain composes the configured observer with the built-in
// logging and metrics observers. Explicit observers run first.
func buildObserverChain(logger Logger, cfg InstrumentationConfig) SchedulerObserver {
	observers := make([]SchedulerObserver, 0, 3)
	if cfg.Observer != nil {
		observers = append(observers, cfg.Observer)
	}
	obs := cfg.Observation
	if obs.EnableStructuredLogging {
		logObserver := newLoggingObserver(obs.StructuredLogger, logger, obs.LoggingFormat)
		observers = append(observers, logObserver)
	}
	if obs.EnableMetrics {
		collector := obs.MetricsCollector
		if collector == nil {
			collector = NewWorkGroupMetricsCollector(obs.MetricsOptions)
		}
		observers = append(observers, metricsObserver{collector: collector})
	}
	switch len(observers) {
	case 0:
		return noopObserver{}
	case 1:
		return observers[0]
	default:
		return compositeObserver{observers: observers}
	}
}

type compositeObserver struct {
	observers []SchedulerObserver
}

func (c compositeObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	for _, obs := range c.observers {
		if obs == nil {
			continue
		}
		obs.WorkGroupCompleted(summary)
	}
}

type metricsObserver struct {
	collector MetricsCollector
}

func (m metricsObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	if m.collector == nil {
		return
	}
	m.collector.ObserveWorkGroup(summary)
}

type loggingObserver struct {
	logger Logger
	format ObservationLogFormat
}

func newLoggingObserver(structured Logger, fallback Logger, format ObservationLogFormat) loggingObserver {
	logger := structured
	if logger == nil {
		logger = fallback
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return loggingObserver{logger: logger, format: format}
}

func (l loggingObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	switch l.format {
	case ObservationLogFormatKeyValue:
		l.logger.Info("work group completed",
			"work_group", string(summary.WorkGroupID),
			"mode", modeLabel(summary.Mode),
			"async", summary.Async,
			"tick", summary.Tick,
			"duration_ms", float64(summary.Duration)/float64(time.Millisecond),
			"systems_total", summary.SystemsTotal,
			"systems_executed", summary.SystemsExecuted,
			"systems_skipped", summary.SystemsSkipped,
			"error", errorLabel(summary.Error),
		)
	default:
		payload := map[string]any{
			"work_group":       string(summary.WorkGroupID),
			"mode":             modeLabel(summary.Mode),
			"async":            summary.Async,
			"tick":             summary.Tick,
			"duration_ms":      float64(summary.Duration) / float64(time.Millisecond),
			"systems_total":    summary.SystemsTotal,
			"systems_executed": summary.SystemsExecuted,
			"systems_skipped":  summary.SystemsSkipped,
		}
		if summary.Error != nil {
			payload["error"] = summary.Error.Error()
		}
		if len(summary.ComponentWrites) > 0 {
			payload["component_writes"] = componentLabels(summary.ComponentWrites)
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			l.logger.Error("work group summary encode failed", "err", err)
			return
		}
		l.logger.Info("work group completed", "summary", string(encoded))
	}
}

func componentLabels(types []ComponentType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func errorLabel(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func modeLabel(mode WorkGroupMode) string {
	switch mode {
	case WorkGroupModeAsync:
		return "async"
	default:
		return "synchronized"
	}
}

var defaultDurationBuckets = []time.Duration{
	100 * time.Microsecond,
	500 * time.Microsecond,
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
}

// WorkGroupMetricsCollector accumulates per-group counters and duration
// histograms and renders them in the Prometheus text exposition format.
type WorkGroupMetricsCollector struct {
	mu      sync.Mutex
	writer  io.Writer
	buckets []time.Duration
	groups  map[WorkGroupID]*workGroupMetrics
}

type workGroupMetrics struct {
	runs          uint64
	errors        uint64
	skippedTotal  uint64
	executedTotal uint64
	durationSum   time.Duration
	bucketCounts  []uint64
}

// NewWorkGroupMetricsCollector builds a collector writing to the configured
// writer, defaulting to stdout.
func NewWorkGroupMetricsCollector(opts *MetricsCollectorOptions) *WorkGroupMetricsCollector {
	collector := &WorkGroupMetricsCollector{
		writer:  os.Stdout,
		buckets: defaultDurationBuckets,
		groups:  make(map[WorkGroupID]*workGroupMetrics),
	}
	if opts != nil {
		if opts.Writer != nil {
			collector.writer = opts.Writer
		}
		if len(opts.DurationBuckets) > 0 {
			buckets := append([]time.Duration(nil), opts.DurationBuckets...)
			sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
			collector.buckets = buckets
		}
	}
	return collector
}

// ObserveWorkGroup records a completed work group run.
func (c *WorkGroupMetricsCollector) ObserveWorkGroup(summary WorkGroupSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	metrics, ok := c.groups[summary.WorkGroupID]
	if !ok {
		metrics = &workGroupMetrics{bucketCounts: make([]uint64, len(c.buckets))}
		c.groups[summary.WorkGroupID] = metrics
	}
	metrics.runs++
	if summary.Error != nil {
		metrics.errors++
	}
	metrics.skippedTotal += uint64(summary.SystemsSkipped)
	metrics.executedTotal += uint64(summary.SystemsExecuted)
	metrics.durationSum += summary.Duration
	for i, bound := range c.buckets {
		if summary.Duration <= bound {
			metrics.bucketCounts[i]++
		}
	}
}

// WriteMetrics renders the current counters to the configured writer.
func (c *WorkGroupMetricsCollector) WriteMetrics() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]WorkGroupID, 0, len(c.groups))
	for id := range c.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("# TYPE ecs_work_group_runs_total counter\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "ecs_work_group_runs_total{work_group=%q} %d\n", id, c.groups[id].runs)
	}
	b.WriteString("# TYPE ecs_work_group_errors_total counter\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "ecs_work_group_errors_total{work_group=%q} %d\n", id, c.groups[id].errors)
	}
	b.WriteString("# TYPE ecs_work_group_systems_executed_total counter\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "ecs_work_group_systems_executed_total{work_group=%q} %d\n", id, c.groups[id].executedTotal)
	}
	b.WriteString("# TYPE ecs_work_group_systems_skipped_total counter\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "ecs_work_group_systems_skipped_total{work_group=%q} %d\n", id, c.groups[id].skippedTotal)
	}
	b.WriteString("# TYPE ecs_work_group_duration_seconds histogram\n")
	for _, id := range ids {
		metrics := c.groups[id]
		cumulative := uint64(0)
		for i, bound := range c.buckets {
			cumulative = metrics.bucketCounts[i]
			fmt.Fprintf(&b, "ecs_work_group_duration_seconds_bucket{work_group=%q,le=%q} %d\n",
				id, formatSeconds(bound), cumulative)
		}
		fmt.Fprintf(&b, "ecs_work_group_duration_seconds_bucket{work_group=%q,le=\"+Inf\"} %d\n", id, metrics.runs)
		fmt.Fprintf(&b, "ecs_work_group_duration_seconds_sum{work_group=%q} %s\n", id, formatSeconds(metrics.durationSum))
		fmt.Fprintf(&b, "ecs_work_group_duration_seconds_count{work_group=%q} %d\n", id, metrics.runs)
	}

	_, err := io.WriteString(c.writer, b.String())
	return err
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%g", d.Seconds())
}
