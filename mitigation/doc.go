// SPDX-License-Identifier: MIT

// Package mitigation corrects raw outcome counts with an inverted readout
// bias matrix and wraps calibration plus correction in a scoped session.
//
// Two entry points:
//
//   - Apply is the bare engine. It turns counts into a probability vector,
//     multiplies by M⁻¹, clips negatives, renormalizes and rounds back to
//     counts over every bit-string of the register width.
//   - Open / With run the calibration circuits through a caller-supplied
//     Runner exactly once, build the composite matrix and return a Session
//     whose Run method corrects each subsequent result.
//
// Failure policy:
//
//   - Structural problems (malformed counts, wrong matrix size, runner
//     arity, missing calibration labels) are returned as errors.
//   - Numerical degeneracies never are: an exactly singular matrix, or one
//     above the optional condition limit, returns the raw counts unchanged;
//     a zero-total input is returned as is; an all-clipped vector becomes
//     an all-zero distribution.
//
// Rounding: each outcome is rounded independently to the nearest integer,
// exact halves to even (math.RoundToEven), so the corrected total may differ
// from the raw total by at most the number of outcomes, 2^N.
//
// A Session holds no goroutines and no external resources. Its matrix is
// read-only after Open, so concurrent Run calls are safe whenever the
// Runner itself is.
package mitigation
