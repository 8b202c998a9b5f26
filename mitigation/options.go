// SPDX-License-Identifier: MIT

// Package mitigation: functional configuration for sessions, runs and the
// bare engine.
//
// Three option families:
//   - Option configures Open/With (shots, runner params, logger, condition limit).
//   - RunOption configures one Session.Run call (pre-collected counts, run params).
//   - ApplyOption configures Apply (condition limit).
//
// Constructors panic only on nonsensical values (programmer error). A
// non-positive shot count is NOT rejected here: it is a calibration error
// reported by Open, so it reaches the caller as tuneq.ErrCalibration.
package mitigation

import (
	"maps"
	"math"

	"github.com/katalvlaran/tuneq/counts"
	"github.com/sirupsen/logrus"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultShots is the number of executions per circuit when WithShots is absent.
	DefaultShots = 1024

	// DefaultConditionLimit disables the conditioning guard: only exactly
	// singular matrices fall back to raw counts.
	DefaultConditionLimit = 0.0
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicConditionLimitInvalid = "mitigation: condition limit must be finite and >= 0"
)

// ---------- Session options ----------

// Option mutates session options. Safe to apply repeatedly.
type Option func(*Options)

// Options stores the effective session configuration after applying Option setters.
type Options struct {
	shots     int                // DefaultShots
	params    map[string]any     // passed verbatim to the calibration runner call
	logger    logrus.FieldLogger // logrus.StandardLogger() unless WithLogger
	condLimit float64            // DefaultConditionLimit
}

// WithShots sets the shot count used for calibration and for every Run.
func WithShots(n int) Option {
	return func(o *Options) { o.shots = n }
}

// WithParams sets keyword options forwarded unchanged to the runner's
// calibration call. The map is copied.
func WithParams(params map[string]any) Option {
	cp := maps.Clone(params)

	return func(o *Options) { o.params = cp }
}

// WithLogger routes session logs to l. A nil logger keeps the default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithConditionLimit makes every Run fall back to raw counts when the
// 1-norm condition number of the bias matrix exceeds limit.
// Zero disables the check. Panics on a negative or non-finite limit.
func WithConditionLimit(limit float64) Option {
	validateLimit(limit)

	return func(o *Options) { o.condLimit = limit }
}

// defaultOptions returns the baseline session configuration.
func defaultOptions() Options {
	return Options{
		shots:     DefaultShots,
		logger:    logrus.StandardLogger(),
		condLimit: DefaultConditionLimit,
	}
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// ---------- Run options ----------

// RunOption mutates the options of a single Session.Run call.
type RunOption func(*runOptions)

type runOptions struct {
	raw    counts.Counts  // skip execution when non-nil
	params map[string]any // run-specific runner params
}

// WithRawCounts supplies counts that were already collected elsewhere;
// the runner is not called.
func WithRawCounts(c counts.Counts) RunOption {
	return func(o *runOptions) { o.raw = c }
}

// WithRunParams sets keyword options forwarded to the runner for this run only.
// Session-level params from WithParams are not merged in.
func WithRunParams(params map[string]any) RunOption {
	cp := maps.Clone(params)

	return func(o *runOptions) { o.params = cp }
}

func gatherRunOptions(opts ...RunOption) runOptions {
	var o runOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// ---------- Apply options ----------

// ApplyOption mutates the options of a single Apply call.
type ApplyOption func(*applyOptions)

type applyOptions struct {
	maxCond float64 // 0 = exact-singularity check only
}

// WithMaxCondition sets the condition-number limit above which Apply returns
// the raw counts with SkippedIllConditioned. Zero disables the check.
// Panics on a negative or non-finite limit.
func WithMaxCondition(limit float64) ApplyOption {
	validateLimit(limit)

	return func(o *applyOptions) { o.maxCond = limit }
}

func gatherApplyOptions(opts ...ApplyOption) applyOptions {
	o := applyOptions{maxCond: DefaultConditionLimit}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

func validateLimit(limit float64) {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		panic(panicConditionLimitInvalid)
	}
}
