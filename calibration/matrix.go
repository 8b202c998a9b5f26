// SPDX-License-Identifier: MIT

package calibration

import (
	"fmt"

	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/matrix"
)

// Results maps a calibration label to the outcome counts of its circuit.
type Results map[string]counts.Counts

// split partitions the counts of one label by the measured value of qubit.
// Keys too short to contain the qubit are structural errors.
func split(label string, c counts.Counts, qubit int) (meas0, meas1, total int, err error) {
	for bits, n := range c {
		if qubit >= len(bits) {
			return 0, 0, 0, fmt.Errorf("%w: %s: outcome %q has no bit for qubit %d",
				tuneq.ErrCalibration, label, bits, qubit)
		}
		if counts.Bit(bits, qubit) == '0' {
			meas0 += n
		} else {
			meas1 += n
		}
	}

	return meas0, meas1, meas0 + meas1, nil
}

// QubitMatrix estimates the 2×2 readout matrix of one qubit.
//
// Implementation:
//   - Stage 1: require both qubit_<i>_prep0 and qubit_<i>_prep1 in results.
//   - Stage 2: bucket each label's counts by the measured value of qubit i.
//   - Stage 3: require a non-zero total per label, then L1-normalize each row of the tally.
//
// Errors: tuneq.ErrCalibration naming the qubit (missing label, zero total).
func QubitMatrix(qubit int, results Results) (*matrix.Dense, error) {
	label0, label1 := Label(qubit, Prep0), Label(qubit, Prep1)
	c0, ok0 := results[label0]
	c1, ok1 := results[label1]
	if !ok0 || !ok1 {
		return nil, fmt.Errorf("%w: missing calibration data for qubit %d", tuneq.ErrCalibration, qubit)
	}

	m00, m01, total0, err := split(label0, c0, qubit)
	if err != nil {
		return nil, err
	}
	m10, m11, total1, err := split(label1, c1, qubit)
	if err != nil {
		return nil, err
	}
	if total0 == 0 || total1 == 0 {
		return nil, fmt.Errorf("%w: no counts found for qubit %d prep states", tuneq.ErrCalibration, qubit)
	}

	// Row = prepared state, column = measured state.
	tally, err := matrix.NewDenseFrom([][]float64{
		{float64(m00), float64(m01)},
		{float64(m10), float64(m11)},
	})
	if err != nil {
		return nil, err
	}
	mq, _, err := matrix.NormalizeRowsL1(tally)

	return mq, err
}

// BuildMatrix builds the composite 2^n × 2^n bias matrix from calibration results.
//
// Implementation:
//   - Stage 1: reject shots <= 0 before any per-qubit work.
//   - Stage 2: estimate M_i for i = 0..n-1 via QubitMatrix.
//   - Stage 3: fold acc = acc ⊗ M_i starting from [[1]].
//
// shots is the declared shot count; the matrix itself is normalized by each
// label's observed total, which may be smaller when outcomes are absent.
//
// Errors: tuneq.ErrCalibration (shots, missing labels, zero totals),
// tuneq.ErrConfig (n <= 0).
//
// Complexity: O(n·K + 4^n) where K is the number of distinct outcomes per label.
func BuildMatrix(n int, results Results, shots int) (*matrix.Dense, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: invalid number of shots for calibration: %d", tuneq.ErrCalibration, shots)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: register size must be > 0, got %d", tuneq.ErrConfig, n)
	}

	acc, err := matrix.NewIdentity(1) // the 1×1 seed [[1.0]]
	if err != nil {
		return nil, err
	}
	for q := 0; q < n; q++ {
		mq, err := QubitMatrix(q, results)
		if err != nil {
			return nil, err
		}
		if acc, err = matrix.Kron(acc, mq); err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// Fidelities returns the assignment fidelity (P(0|0)+P(1|1))/2 of every qubit.
// A perfect readout channel scores 1; a channel that ignores the prepared state scores 0.5.
func Fidelities(n int, results Results) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: register size must be > 0, got %d", tuneq.ErrConfig, n)
	}
	out := make([]float64, n)
	for q := 0; q < n; q++ {
		mq, err := QubitMatrix(q, results)
		if err != nil {
			return nil, err
		}
		p00, _ := mq.At(0, 0)
		p11, _ := mq.At(1, 1)
		out[q] = (p00 + p11) / 2
	}

	return out, nil
}
