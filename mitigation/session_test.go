package mitigation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/circuit"
	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/matrix"
	"github.com/katalvlaran/tuneq/mitigation"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Runner that answers *circuit.Circuit values with the ideal
// outcome and anything else with main. It records every call.
type recorder struct {
	mu    sync.Mutex
	main  counts.Counts
	calls []call
}

type call struct {
	circuits int
	shots    int
	params   map[string]any
}

func (r *recorder) Run(_ context.Context, circuits []any, shots int, params map[string]any) ([]counts.Counts, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{circuits: len(circuits), shots: shots, params: params})
	r.mu.Unlock()

	out := make([]counts.Counts, len(circuits))
	for i, c := range circuits {
		cc, ok := c.(*circuit.Circuit)
		if !ok {
			out[i] = r.main.Clone()
			continue
		}
		bits := []byte(strings.Repeat("0", cc.NumQubits))
		for _, g := range cc.Gates {
			if g.Name != circuit.X {
				continue
			}
			for _, q := range g.Qubits {
				pos := cc.NumQubits - 1 - q
				bits[pos] ^= 1 // '0' ↔ '1'
			}
		}
		out[i] = counts.Counts{string(bits): shots}
	}

	return out, nil
}

// fixed returns a Runner that answers every circuit with c.
func fixed(c counts.Counts) mitigation.RunnerFunc {
	return func(_ context.Context, circuits []any, _ int, _ map[string]any) ([]counts.Counts, error) {
		out := make([]counts.Counts, len(circuits))
		for i := range out {
			out[i] = c.Clone()
		}

		return out, nil
	}
}

func quietLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()

	return l
}

// TestOpenScenarioA calibrates one perfect qubit into the identity.
func TestOpenScenarioA(t *testing.T) {
	r := &recorder{}
	s, err := mitigation.Open(context.Background(), 1, r, mitigation.WithShots(10), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()

	I, _ := matrix.NewIdentity(2)
	ok, err := matrix.AllClose(s.Matrix(), I, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1.0, s.Condition())

	require.Len(t, r.calls, 1)
	require.Equal(t, 2, r.calls[0].circuits)
	require.Equal(t, 10, r.calls[0].shots)
	require.Equal(t, []string{"qubit_0_prep0", "qubit_0_prep1"}, s.Labels())
}

// TestSessionScenarioB: perfect calibration leaves counts untouched, both for
// runner-executed circuits and for pre-collected counts.
func TestSessionScenarioB(t *testing.T) {
	raw := counts.Counts{"00": 300, "01": 200, "10": 300, "11": 200}
	r := &recorder{main: raw}

	err := mitigation.With(context.Background(), 2, r, func(s *mitigation.Session) error {
		out, err := s.Run(context.Background(), "main")
		require.NoError(t, err)
		require.Equal(t, raw, out)

		out, err = s.Run(context.Background(), nil, mitigation.WithRawCounts(raw))
		require.NoError(t, err)
		require.Equal(t, raw, out)

		return nil
	}, mitigation.WithShots(1000), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)

	// one calibration call plus one run; WithRawCounts skips the runner
	require.Len(t, r.calls, 2)
	require.Equal(t, 4, r.calls[0].circuits)
	require.Equal(t, 1, r.calls[1].circuits)
	require.Equal(t, 1000, r.calls[1].shots)
}

// TestSessionScenarioC: one label concentrated on a single outcome makes the
// matrix singular; runs fall back without an error and keep the total.
func TestSessionScenarioC(t *testing.T) {
	calib := []counts.Counts{
		{"00": 100},          // qubit_0_prep0
		{"00": 50, "01": 50}, // qubit_0_prep1
		{"00": 100},          // qubit_1_prep0
		{"00": 100},          // qubit_1_prep1: never reads 1
	}
	runner := mitigation.RunnerFunc(func(_ context.Context, circuits []any, _ int, _ map[string]any) ([]counts.Counts, error) {
		return calib, nil
	})

	logger, hook := logtest.NewNullLogger()
	s, err := mitigation.Open(context.Background(), 2, runner, mitigation.WithShots(100), mitigation.WithLogger(logger))
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	raw := counts.Counts{"00": 250, "01": 250, "10": 250, "11": 250}
	out, err := s.Run(context.Background(), nil, mitigation.WithRawCounts(raw))
	require.NoError(t, err)
	require.Equal(t, 1000, out.Total())
	require.Equal(t, raw, out)
	require.Equal(t, "skipped_singular", hook.LastEntry().Data["outcome"].(mitigation.Result).String())
}

// TestSessionScenarioD: a runner that always splits 50/50 between 000 and 111.
func TestSessionScenarioD(t *testing.T) {
	const shots = 1000
	runner := fixed(counts.Counts{"000": shots / 2, "111": shots / 2})

	err := mitigation.With(context.Background(), 3, runner, func(s *mitigation.Session) error {
		for i := 0; i < 10; i++ {
			out, err := s.Run(context.Background(), i)
			if err != nil {
				return err
			}
			assert.Equal(t, shots, out.Total(), "run %d", i)
		}

		return nil
	}, mitigation.WithShots(shots), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
}

// TestOpenCalibrationErrors: every acquisition failure is a calibration error
// and no session is returned.
func TestOpenCalibrationErrors(t *testing.T) {
	boom := errors.New("backend offline")
	cases := []struct {
		name   string
		runner mitigation.Runner
		shots  int
		cause  error
	}{
		{
			name: "too few results",
			runner: mitigation.RunnerFunc(func(_ context.Context, c []any, shots int, _ map[string]any) ([]counts.Counts, error) {
				return []counts.Counts{{"00": shots}}, nil
			}),
			shots: 10,
		},
		{
			name: "nil result",
			runner: mitigation.RunnerFunc(func(context.Context, []any, int, map[string]any) ([]counts.Counts, error) {
				return nil, nil
			}),
			shots: 10,
		},
		{
			name: "runner error",
			runner: mitigation.RunnerFunc(func(context.Context, []any, int, map[string]any) ([]counts.Counts, error) {
				return nil, boom
			}),
			shots: 10,
			cause: boom,
		},
		{
			name:   "zero totals",
			runner: fixed(counts.Counts{"00": 0}),
			shots:  10,
		},
		{
			name:   "non-positive shots",
			runner: &recorder{},
			shots:  0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := mitigation.Open(context.Background(), 2, tc.runner,
				mitigation.WithShots(tc.shots), mitigation.WithLogger(quietLogger()))
			require.Nil(t, s)
			require.ErrorIs(t, err, tuneq.ErrCalibration)
			require.ErrorIs(t, err, tuneq.ErrTuneQ)
			if tc.cause != nil {
				require.ErrorIs(t, err, tc.cause)
			}
		})
	}
}

// TestOpenShotsCheckedBeforeRunner never runs calibration with a bad shot count.
func TestOpenShotsCheckedBeforeRunner(t *testing.T) {
	r := &recorder{}
	_, err := mitigation.Open(context.Background(), 2, r, mitigation.WithShots(-5))
	require.ErrorIs(t, err, tuneq.ErrCalibration)
	require.Empty(t, r.calls)
}

func TestOpenConfigErrors(t *testing.T) {
	_, err := mitigation.Open(context.Background(), 2, nil)
	require.ErrorIs(t, err, mitigation.ErrNilRunner)
	require.ErrorIs(t, err, tuneq.ErrConfig)

	r := &recorder{}
	_, err = mitigation.Open(context.Background(), 0, r)
	require.ErrorIs(t, err, tuneq.ErrConfig)
	require.Empty(t, r.calls)
}

// TestOpenDefaults uses DefaultShots and forwards WithParams to calibration only.
func TestOpenDefaults(t *testing.T) {
	r := &recorder{main: counts.Counts{"0": 1}}
	params := map[string]any{"backend": "sim"}
	s, err := mitigation.Open(context.Background(), 1, r,
		mitigation.WithParams(params), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()

	params["backend"] = "mutated after Open"
	require.Equal(t, mitigation.DefaultShots, s.Shots())
	require.Equal(t, 1, s.Qubits())
	require.NotEmpty(t, s.ID())
	require.Equal(t, map[string]any{"backend": "sim"}, r.calls[0].params)

	_, err = s.Run(context.Background(), "main", mitigation.WithRunParams(map[string]any{"tag": "x"}))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"tag": "x"}, r.calls[1].params)

	_, err = s.Run(context.Background(), "main")
	require.NoError(t, err)
	require.Empty(t, r.calls[2].params)
}

// TestMatrixIsACopy keeps the session matrix read-only.
func TestMatrixIsACopy(t *testing.T) {
	s, err := mitigation.Open(context.Background(), 1, &recorder{}, mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()

	m := s.Matrix()
	require.NoError(t, m.Set(0, 0, 0))
	v, err := s.Matrix().At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}

// TestRunErrors covers the structural failures of a single run.
func TestRunErrors(t *testing.T) {
	twice := mitigation.RunnerFunc(func(_ context.Context, circuits []any, shots int, _ map[string]any) ([]counts.Counts, error) {
		if _, ok := circuits[0].(*circuit.Circuit); ok {
			return (&recorder{}).Run(context.Background(), circuits, shots, nil)
		}

		return []counts.Counts{{"00": 1}, {"00": 1}}, nil
	})
	s, err := mitigation.Open(context.Background(), 2, twice, mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Run(context.Background(), "main")
	require.ErrorIs(t, err, mitigation.ErrRunnerResult)

	_, err = s.Run(context.Background(), nil, mitigation.WithRawCounts(counts.Counts{"000": 5}))
	require.ErrorIs(t, err, mitigation.ErrRegisterMismatch)

	_, err = s.Run(context.Background(), nil, mitigation.WithRawCounts(counts.Counts{"0x": 5}))
	require.ErrorIs(t, err, counts.ErrBadBit)

	out, err := s.Run(context.Background(), nil, mitigation.WithRawCounts(counts.Counts{}))
	require.NoError(t, err)
	require.Empty(t, out)

	empty := counts.Counts{"0": 0, "111": 0}
	out, err = s.Run(context.Background(), nil, mitigation.WithRawCounts(empty))
	require.NoError(t, err)
	require.Equal(t, empty, out)
}

// TestRunAfterClose fails fast; Close is idempotent.
func TestRunAfterClose(t *testing.T) {
	r := &recorder{main: counts.Counts{"0": 1}}
	s, err := mitigation.Open(context.Background(), 1, r, mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Run(context.Background(), "main")
	require.ErrorIs(t, err, mitigation.ErrSessionClosed)
	require.Len(t, r.calls, 1)
}

// TestWithScope closes the session on success and on failure, and skips fn
// when acquisition fails.
func TestWithScope(t *testing.T) {
	var kept *mitigation.Session
	err := mitigation.With(context.Background(), 1, &recorder{}, func(s *mitigation.Session) error {
		kept = s

		return nil
	}, mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = kept.Run(context.Background(), nil, mitigation.WithRawCounts(counts.Counts{"0": 1}))
	require.ErrorIs(t, err, mitigation.ErrSessionClosed)

	sentinel := errors.New("caller failed")
	err = mitigation.With(context.Background(), 1, &recorder{}, func(s *mitigation.Session) error {
		kept = s

		return sentinel
	}, mitigation.WithLogger(quietLogger()))
	require.ErrorIs(t, err, sentinel)
	_, err = kept.Run(context.Background(), nil, mitigation.WithRawCounts(counts.Counts{"0": 1}))
	require.ErrorIs(t, err, mitigation.ErrSessionClosed)

	called := false
	err = mitigation.With(context.Background(), 1, fixed(nil), func(*mitigation.Session) error {
		called = true

		return nil
	}, mitigation.WithLogger(quietLogger()))
	require.ErrorIs(t, err, tuneq.ErrCalibration)
	require.False(t, called)
}

// TestSessionConditionLimit applies the configured limit to every run.
func TestSessionConditionLimit(t *testing.T) {
	// Per-qubit [[0.6, 0.4], [0.4, 0.6]], κ₁ = 5.
	calib := []counts.Counts{{"0": 60, "1": 40}, {"0": 40, "1": 60}}
	runner := mitigation.RunnerFunc(func(context.Context, []any, int, map[string]any) ([]counts.Counts, error) {
		return calib, nil
	})
	raw := counts.Counts{"0": 550, "1": 450}

	s, err := mitigation.Open(context.Background(), 1, runner,
		mitigation.WithShots(100), mitigation.WithConditionLimit(4), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	out, err := s.Run(context.Background(), nil, mitigation.WithRawCounts(raw))
	require.NoError(t, err)
	require.Equal(t, raw, out)
	require.InDelta(t, 5.0, s.Condition(), 1e-9)

	s, err = mitigation.Open(context.Background(), 1, runner,
		mitigation.WithShots(100), mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	out, err = s.Run(context.Background(), nil, mitigation.WithRawCounts(raw))
	require.NoError(t, err)
	require.Equal(t, counts.Counts{"0": 750, "1": 250}, out)
}

// TestConcurrentRuns shares one session between goroutines.
func TestConcurrentRuns(t *testing.T) {
	raw := counts.Counts{"00": 300, "01": 200, "10": 300, "11": 200}
	s, err := mitigation.Open(context.Background(), 2, &recorder{main: raw}, mitigation.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Run(context.Background(), "main")
			if err == nil && out.Total() != raw.Total() {
				err = errors.New("total changed")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
