// SPDX-License-Identifier: MIT

package calibration

import (
	"fmt"

	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/circuit"
)

// Prepared states of a calibration circuit.
const (
	Prep0 = 0
	Prep1 = 1
)

// Label returns the canonical calibration label "qubit_<i>_prep<p>".
func Label(qubit, prep int) string {
	return fmt.Sprintf("qubit_%d_prep%d", qubit, prep)
}

// Spec pairs a calibration circuit with its label.
type Spec struct {
	Circuit *circuit.Circuit
	Label   string
}

// BuildCircuits returns the 2n calibration specs, ordered
// (qubit 0 prep0, qubit 0 prep1, qubit 1 prep0, …).
//
// The prep0 circuit has no gates; the prep1 circuit carries a single X on
// the calibrated qubit. Both measure all n qubits. Labels are unique.
//
// Errors: tuneq.ErrConfig when n <= 0.
func BuildCircuits(n int) ([]Spec, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: register size must be > 0, got %d", tuneq.ErrConfig, n)
	}

	specs := make([]Spec, 0, 2*n)
	for q := 0; q < n; q++ {
		c0, err := circuit.New(n)
		if err != nil {
			return nil, err
		}

		c1, err := circuit.New(n)
		if err != nil {
			return nil, err
		}
		if err = c1.AddGate(circuit.X, q); err != nil { // flip |0⟩ → |1⟩
			return nil, err
		}

		specs = append(specs,
			Spec{Circuit: c0, Label: Label(q, Prep0)},
			Spec{Circuit: c1, Label: Label(q, Prep1)},
		)
	}

	return specs, nil
}
