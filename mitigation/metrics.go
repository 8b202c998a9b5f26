// SPDX-License-Identifier: MIT

package mitigation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// tracer is the package-level tracer; it is a no-op until the process installs a provider.
var tracer = otel.Tracer("github.com/katalvlaran/tuneq/mitigation")

// Metric label values.
const (
	resultOK    = "ok"
	resultError = "error"

	phaseCalibration = "calibration"
	phaseRun         = "run"
)

var (
	// calibrationTotal counts Open attempts by result.
	calibrationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuneq_calibration_total",
		Help: "Total session calibrations by result",
	}, []string{"result"})

	// correctionsTotal counts Session.Run corrections by Apply outcome.
	correctionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuneq_corrections_total",
		Help: "Total corrections by outcome",
	}, []string{"outcome"})

	// runnerDuration tracks runner latency for calibration and run calls.
	runnerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tuneq_runner_duration_seconds",
		Help:    "Runner call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"phase"})
)
