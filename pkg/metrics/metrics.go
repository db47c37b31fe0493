// Package metrics maintains in-process Prometheus collectors for the
// supervision engine. Unlike the teacher's metrics package there is no HTTP
// exporter here: the spec's Non-goals exclude any IPC surface beyond the two
// reserved administrative signals, so these collectors are only ever
// snapshotted into the internal diagnostic log, never served over a
// network.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ServicesSupervised counts the services discovered by the launcher's
	// single directory scan.
	ServicesSupervised = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rkinit_services_supervised",
			Help: "Number of services the launcher created a supervisor for",
		},
	)

	// SpawnsTotal counts spawn attempts per service, successful or not.
	SpawnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rkinit_spawns_total",
			Help: "Total spawn attempts by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	// ExitsTotal counts observed child exits per service.
	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rkinit_exits_total",
			Help: "Total observed child exits by service",
		},
		[]string{"service"},
	)

	// LogRotationsTotal counts log-writer truncate-to-zero events.
	LogRotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rkinit_log_rotations_total",
			Help: "Total log file size-cap rotations by service and stream",
		},
		[]string{"service", "stream"},
	)

	// ServiceUptimeSeconds observes how long a service ran between a
	// successful spawn and its exit, per service.
	ServiceUptimeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rkinit_service_uptime_seconds",
			Help:    "Time between a service's spawn and its exit",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"service"},
	)

	// ShutdownDurationSeconds observes how long the Signal Controller's
	// full SIGTERM/SIGKILL/reboot sequence took, per requested mode.
	ShutdownDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rkinit_shutdown_duration_seconds",
			Help:    "Time from the shutdown signal to the reboot syscall",
			Buckets: prometheus.LinearBuckets(1, 2, 6),
		},
		[]string{"mode"},
	)

	// BootMountDurationSeconds observes how long the Mount Manager's fixed
	// five-step boot sequence took, from the first mount attempt through
	// the last.
	BootMountDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rkinit_boot_mount_duration_seconds",
			Help:    "Time spent running the fixed boot mount sequence",
			Buckets: prometheus.LinearBuckets(0, 0.5, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(ServicesSupervised)
	prometheus.MustRegister(SpawnsTotal)
	prometheus.MustRegister(ExitsTotal)
	prometheus.MustRegister(LogRotationsTotal)
	prometheus.MustRegister(ServiceUptimeSeconds)
	prometheus.MustRegister(ShutdownDurationSeconds)
	prometheus.MustRegister(BootMountDurationSeconds)
}

// Timer times one operation and reports its duration into a histogram once
// the operation completes; used by the supervisor (per-service uptime) and
// the shutdown sequence (total teardown duration).
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer, starting now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec with
// labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Snapshot gathers the current counter/gauge/histogram values into a flat
// map for logging at shutdown. It deliberately has no HTTP handler
// counterpart.
func Snapshot() map[string]float64 {
	out := make(map[string]float64)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return out
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			switch {
			case m.GetCounter() != nil:
				out[name] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[name] += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[name+"_sum"] += m.GetHistogram().GetSampleSum()
				out[name+"_count"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}
