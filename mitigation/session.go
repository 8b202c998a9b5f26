// SPDX-License-Identifier: MIT

package mitigation

import (
	"context"
	"fmt"
	"maps"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/calibration"
	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/matrix"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session is a calibrated mitigation context for one register.
// Everything except the closed flag is fixed at Open.
type Session struct {
	id        string
	qubits    int
	shots     int
	runner    Runner
	bias      *matrix.Dense
	condition float64
	labels    []string
	applyOpts []ApplyOption
	log       logrus.FieldLogger
	closed    atomic.Bool
}

// Open calibrates a register of qubits and returns a ready Session.
//
// Implementation:
//   - Stage 1: reject a nil runner (tuneq.ErrConfig) and shots <= 0 (tuneq.ErrCalibration).
//   - Stage 2: build the 2·qubits calibration specs and call the runner once
//     with all circuits, the shot count and the WithParams map.
//   - Stage 3: require one result per circuit, zip labels to results and
//     build the composite bias matrix.
//
// Any failure returns a nil Session; there is nothing to release.
//
// Errors:
//   - tuneq.ErrConfig: qubits <= 0, nil runner.
//   - tuneq.ErrCalibration: bad shots, runner error, nil result, wrong arity,
//     missing labels, zero totals.
func Open(ctx context.Context, qubits int, runner Runner, opts ...Option) (s *Session, err error) {
	o := gatherOptions(opts...)
	id := uuid.NewString()

	ctx, span := tracer.Start(ctx, "mitigation.Open",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.Int("qubits", qubits),
			attribute.Int("shots", o.shots),
		),
	)
	defer span.End()
	defer func() {
		if err != nil {
			calibrationTotal.WithLabelValues(resultError).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		calibrationTotal.WithLabelValues(resultOK).Inc()
		span.SetStatus(codes.Ok, "")
	}()

	// Stage 1
	if runner == nil {
		return nil, ErrNilRunner
	}
	if o.shots <= 0 {
		return nil, fmt.Errorf("%w: invalid number of shots for calibration: %d", tuneq.ErrCalibration, o.shots)
	}

	// Stage 2
	specs, err := calibration.BuildCircuits(qubits)
	if err != nil {
		return nil, err
	}
	circuits := make([]any, len(specs))
	labels := make([]string, len(specs))
	for i, sp := range specs {
		circuits[i], labels[i] = sp.Circuit, sp.Label
	}

	results, err := callRunner(ctx, runner, phaseCalibration, circuits, o.shots, o.params)
	if err != nil {
		return nil, fmt.Errorf("%w: calibration runner: %w", tuneq.ErrCalibration, err)
	}

	// Stage 3
	if results == nil {
		return nil, fmt.Errorf("%w: runner must return a sequence of results for calibration circuits", tuneq.ErrCalibration)
	}
	if len(results) != len(specs) {
		return nil, fmt.Errorf("%w: runner returned %d results for %d calibration circuits",
			tuneq.ErrCalibration, len(results), len(specs))
	}
	res := make(calibration.Results, len(specs))
	for i, label := range labels {
		res[label] = results[i]
	}
	bias, err := calibration.BuildMatrix(qubits, res, o.shots)
	if err != nil {
		return nil, err
	}
	cond, err := matrix.ConditionNumber(bias)
	if err != nil {
		return nil, err
	}

	s = &Session{
		id:        id,
		qubits:    qubits,
		shots:     o.shots,
		runner:    runner,
		bias:      bias,
		condition: cond,
		labels:    labels,
		log: o.logger.WithFields(logrus.Fields{
			"session": id,
			"qubits":  qubits,
			"shots":   o.shots,
		}),
	}
	if o.condLimit > 0 {
		s.applyOpts = []ApplyOption{WithMaxCondition(o.condLimit)}
	}

	switch {
	case math.IsInf(cond, 1):
		s.log.Warn("bias matrix is singular; runs will return raw counts")
	case o.condLimit > 0 && cond > o.condLimit:
		s.log.WithField("condition", cond).Warn("bias matrix exceeds condition limit; runs will return raw counts")
	default:
		s.log.WithField("condition", cond).Info("calibration complete")
	}

	return s, nil
}

// With opens a session, passes it to fn and closes it on every exit path.
// fn's error is returned unchanged; an Open error means fn is never called.
func With(ctx context.Context, qubits int, runner Runner, fn func(*Session) error, opts ...Option) (err error) {
	s, err := Open(ctx, qubits, runner, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(s)
}

// Run returns mitigated counts for one circuit.
//
// Without WithRawCounts the runner is called with a one-element circuit
// list, the session shot count and the WithRunParams map. The raw counts
// are then corrected with the session's bias matrix via Apply.
//
// Errors:
//   - ErrSessionClosed after Close.
//   - The runner's error, wrapped; ErrRunnerResult for a result count != 1.
//   - ErrRegisterMismatch when non-empty counts are not Qubits() wide.
//   - Apply's structural errors (malformed counts).
func (s *Session) Run(ctx context.Context, circuit any, opts ...RunOption) (out counts.Counts, err error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	o := gatherRunOptions(opts...)

	ctx, span := tracer.Start(ctx, "mitigation.Run",
		trace.WithAttributes(
			attribute.String("session.id", s.id),
			attribute.Int("qubits", s.qubits),
			attribute.Int("shots", s.shots),
			attribute.Bool("precollected", o.raw != nil),
		),
	)
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	raw := o.raw
	if raw == nil {
		results, err := callRunner(ctx, s.runner, phaseRun, []any{circuit}, s.shots, o.params)
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		if len(results) != 1 {
			return nil, fmt.Errorf("%w: got %d, want 1", ErrRunnerResult, len(results))
		}
		raw = results[0]
	}

	if raw.Total() > 0 {
		width, err := raw.Width()
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		if width != s.qubits {
			return nil, fmt.Errorf("%w: got %d-bit counts for a %d-qubit session", ErrRegisterMismatch, width, s.qubits)
		}
	}

	out, res, err := Apply(raw, s.bias, s.applyOpts...)
	if err != nil {
		return nil, err
	}
	correctionsTotal.WithLabelValues(res.String()).Inc()
	span.SetAttributes(attribute.String("outcome", res.String()))

	if res.Fallback() {
		s.log.WithField("outcome", res).Warn("returning raw counts")
	} else {
		s.log.WithFields(logrus.Fields{
			"outcome": res,
			"total":   raw.Total(),
		}).Debug("counts mitigated")
	}
	span.SetStatus(codes.Ok, "")

	return out, nil
}

// Close marks the session unusable. It is idempotent and always returns nil.
func (s *Session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.log.Debug("session closed")
	}

	return nil
}

// ID returns the session identifier used in logs and spans.
func (s *Session) ID() string { return s.id }

// Qubits returns the calibrated register width.
func (s *Session) Qubits() int { return s.qubits }

// Shots returns the shot count used for calibration and runs.
func (s *Session) Shots() int { return s.shots }

// Matrix returns a copy of the composite bias matrix.
func (s *Session) Matrix() *matrix.Dense { return s.bias.Clone().(*matrix.Dense) }

// Condition returns the 1-norm condition number of the bias matrix (+Inf when singular).
func (s *Session) Condition() float64 { return s.condition }

// Labels returns the calibration labels in submission order.
func (s *Session) Labels() []string { return append([]string(nil), s.labels...) }

// callRunner invokes r inside a child span and records its latency.
// params are copied so a runner cannot mutate session state.
func callRunner(ctx context.Context, r Runner, phase string, circuits []any, shots int, params map[string]any) ([]counts.Counts, error) {
	ctx, span := tracer.Start(ctx, "mitigation.runner",
		trace.WithAttributes(
			attribute.String("phase", phase),
			attribute.Int("circuits", len(circuits)),
			attribute.Int("shots", shots),
		),
	)
	defer span.End()

	p := maps.Clone(params)
	if p == nil {
		p = map[string]any{}
	}

	start := time.Now()
	out, err := r.Run(ctx, circuits, shots, p)
	runnerDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return out, err
}
