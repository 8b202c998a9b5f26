// Package tuneq corrects systematic readout bias in bit-string outcome
// distributions produced by noisy circuit executions.
//
// What is tuneq?
//
//	A small, synchronous library that:
//		• builds per-qubit calibration circuits (prepare |0⟩ / |1⟩, measure all)
//		• turns calibration counts into a composite 2^N × 2^N bias matrix
//		  under the independent-readout-error model (Kronecker product)
//		• inverts that matrix against any measured distribution on the same register
//		• wraps it all in a scoped session around an injected circuit runner
//
// Under the hood, everything is organized under these subpackages:
//
//	matrix/      row-major Dense, Kronecker product, MatVec, pivoted inverse
//	counts/      outcome counts and the bit-ordering convention
//	circuit/     minimal gate-list circuit description
//	calibration/ calibration specs and the composite bias matrix
//	mitigation/  correction engine, Runner contract and Session
//	sim/         deterministic readout-noise simulator (a Runner)
//	cmd/tuneq    command-line front end
//
// Bit ordering: in a bit-string qubit 0 is the rightmost character, and the
// vector index of a bit-string is int(reversed(bits), 2). Qubit 0 is thus the
// most significant bit of the index, matching its position as the leading
// factor of the Kronecker product.
//
// Errors: every library error matches ErrTuneQ via errors.Is; calibration
// failures additionally match ErrCalibration.
//
//	go get github.com/katalvlaran/tuneq
package tuneq
