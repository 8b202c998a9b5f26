// SPDX-License-Identifier: MIT

// Package sim is a deterministic readout-noise backend implementing
// mitigation.Runner.
//
// NoisyReadout accepts *circuit.Circuit values built from X and I gates.
// It computes the ideal basis state, applies an independent per-qubit
// readout channel analytically and apportions the shots over the outcome
// distribution with the largest-remainder method, so every result sums to
// exactly the requested shot count and repeated calls return the same counts.
//
// It exists for tests, demos and the CLI; it models no gate noise and no
// crosstalk.
package sim
