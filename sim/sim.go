// SPDX-License-Identifier: MIT

package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/circuit"
	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/mitigation"
)

var (
	// ErrUnsupportedCircuit is returned for circuit values that are not
	// *circuit.Circuit or do not match the simulated register.
	ErrUnsupportedCircuit = errors.New("sim: unsupported circuit")

	// ErrUnsupportedGate is returned for gates other than X and I.
	ErrUnsupportedGate = errors.New("sim: unsupported gate")

	// ErrBadProbability is returned for flip probabilities outside [0, 1]
	// or probability slices of the wrong length.
	ErrBadProbability = errors.New("sim: flip probability must be in [0, 1]")
)

// NoisyReadout simulates a register whose measurement flips qubit i from 0
// to 1 with probability P01[i] and from 1 to 0 with probability P10[i].
// Nil probability slices mean a perfect readout for that direction.
type NoisyReadout struct {
	Qubits int
	P01    []float64
	P10    []float64
}

var _ mitigation.Runner = (*NoisyReadout)(nil)

// Uniform returns an n-qubit device with the same flip probabilities on every qubit.
func Uniform(n int, p01, p10 float64) *NoisyReadout {
	r := &NoisyReadout{Qubits: n, P01: make([]float64, n), P10: make([]float64, n)}
	for i := 0; i < n; i++ {
		r.P01[i], r.P10[i] = p01, p10
	}

	return r
}

// Validate checks the register size and the flip probabilities.
func (r *NoisyReadout) Validate() error {
	if r.Qubits <= 0 {
		return fmt.Errorf("%w: sim: register size must be > 0, got %d", tuneq.ErrConfig, r.Qubits)
	}
	for _, ps := range [][]float64{r.P01, r.P10} {
		if ps != nil && len(ps) != r.Qubits {
			return fmt.Errorf("%w: got %d probabilities for %d qubits", ErrBadProbability, len(ps), r.Qubits)
		}
		for i, p := range ps {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return fmt.Errorf("%w: qubit %d: %v", ErrBadProbability, i, p)
			}
		}
	}

	return nil
}

// Run executes every circuit with the given shot count. params are ignored.
// The context is checked between circuits.
func (r *NoisyReadout) Run(ctx context.Context, circuits []any, shots int, _ map[string]any) ([]counts.Counts, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if shots <= 0 {
		return nil, fmt.Errorf("%w: sim: shots must be > 0, got %d", tuneq.ErrConfig, shots)
	}

	out := make([]counts.Counts, len(circuits))
	for i, c := range circuits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := r.prepare(c)
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
		out[i] = apportion(r.distribution(state), shots, r.Qubits)
	}

	return out, nil
}

// prepare returns the ideal basis state of c, one bit per qubit.
func (r *NoisyReadout) prepare(c any) ([]bool, error) {
	cc, ok := c.(*circuit.Circuit)
	if !ok || cc == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCircuit, c)
	}
	if cc.NumQubits != r.Qubits {
		return nil, fmt.Errorf("%w: %d-qubit circuit on a %d-qubit device", ErrUnsupportedCircuit, cc.NumQubits, r.Qubits)
	}

	state := make([]bool, r.Qubits)
	for _, g := range cc.Gates {
		switch g.Name {
		case circuit.I:
		case circuit.X:
			for _, q := range g.Qubits {
				if q < 0 || q >= r.Qubits {
					return nil, fmt.Errorf("%s(%d): %w", g.Name, q, circuit.ErrQubitOutOfRange)
				}
				state[q] = !state[q]
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedGate, g.Name)
		}
	}

	return state, nil
}

// distribution returns P(outcome) for every outcome index under the
// independent readout channel, indexed by counts.Index.
func (r *NoisyReadout) distribution(state []bool) []float64 {
	n := r.Qubits
	probs := make([]float64, 1<<n)
	for idx := range probs {
		bits := counts.BitString(idx, n)
		p := 1.0
		for q := 0; q < n; q++ {
			measured := counts.Bit(bits, q) == '1'
			p *= r.channel(q, state[q], measured)
		}
		probs[idx] = p
	}

	return probs
}

// channel returns P(measured | prepared) for qubit q.
func (r *NoisyReadout) channel(q int, prepared, measured bool) float64 {
	var flip float64
	if prepared {
		flip = at(r.P10, q)
	} else {
		flip = at(r.P01, q)
	}
	if prepared == measured {
		return 1 - flip
	}

	return flip
}

func at(ps []float64, i int) float64 {
	if ps == nil {
		return 0
	}

	return ps[i]
}

// apportion converts probabilities into integer counts summing to shots:
// floors first, then one extra shot to each of the largest remainders
// (ties to the lower index). Zero-count outcomes are omitted.
func apportion(probs []float64, shots, width int) counts.Counts {
	type rem struct {
		idx  int
		frac float64
	}
	floors := make([]int, len(probs))
	rems := make([]rem, len(probs))
	left := shots
	for i, p := range probs {
		exact := p * float64(shots)
		floors[i] = int(math.Floor(exact))
		rems[i] = rem{idx: i, frac: exact - float64(floors[i])}
		left -= floors[i]
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; i < left && i < len(rems); i++ {
		floors[rems[i].idx]++
	}

	out := counts.Counts{}
	for i, c := range floors {
		if c > 0 {
			out[counts.BitString(i, width)] = c
		}
	}

	return out
}
