// SPDX-License-Identifier: MIT

// Package circuit is a minimal, framework-neutral circuit description:
// a register size, an ordered gate list and the set of measured qubits.
//
// tuneq only builds these for calibration (an optional X on one qubit, then
// measure everything). Runners translate them into whatever their backend
// executes; the mitigation core never looks inside.
package circuit

import (
	"errors"
	"fmt"
	"strings"
)

// Gate names understood by the bundled simulator.
const (
	X = "X" // bit flip
	I = "I" // identity
)

var (
	// ErrNoQubits is returned by New for a register size <= 0.
	ErrNoQubits = errors.New("circuit: register size must be > 0")

	// ErrQubitOutOfRange is returned when a gate targets a qubit outside the register.
	ErrQubitOutOfRange = errors.New("circuit: qubit index out of range")
)

// Gate is a named operation applied to one or more qubits.
type Gate struct {
	Name   string `json:"name" yaml:"name"`
	Qubits []int  `json:"qubits" yaml:"qubits"`
}

// Circuit is an ordered gate list on NumQubits qubits.
type Circuit struct {
	NumQubits         int    `json:"num_qubits" yaml:"num_qubits"`
	Gates             []Gate `json:"gates" yaml:"gates"`
	MeasurementQubits []int  `json:"measurement_qubits" yaml:"measurement_qubits"`
}

// New returns an empty circuit on n qubits that measures all of them.
func New(n int) (*Circuit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoQubits, n)
	}
	c := &Circuit{NumQubits: n, Gates: []Gate{}}
	c.MeasureAll()

	return c, nil
}

// AddGate appends a gate. Every target must lie in [0, NumQubits).
func (c *Circuit) AddGate(name string, qubits ...int) error {
	for _, q := range qubits {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("%s on qubit %d of %d: %w", name, q, c.NumQubits, ErrQubitOutOfRange)
		}
	}
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: append([]int(nil), qubits...)})

	return nil
}

// MeasureAll marks every qubit of the register for measurement.
func (c *Circuit) MeasureAll() {
	c.MeasurementQubits = make([]int, c.NumQubits)
	for i := range c.MeasurementQubits {
		c.MeasurementQubits[i] = i
	}
}

// String renders e.g. "3q[X(1)] measure[0 1 2]".
func (c *Circuit) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dq[", c.NumQubits)
	for i, g := range c.Gates {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s(%s)", g.Name, strings.Trim(fmt.Sprint(g.Qubits), "[]"))
	}
	fmt.Fprintf(&sb, "] measure%v", c.MeasurementQubits)

	return sb.String()
}
