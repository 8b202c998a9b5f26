// Package matrix provides the dense linear-algebra kernels behind readout
// mitigation: row-major storage, the Kronecker product used to compose
// per-qubit bias matrices, matrix-vector products, a pivoted inverse with
// exact-singularity detection, and a 1-norm condition estimate.
//
// The kernels never panic on user input; they return the sentinels from
// errors.go, wrapped with an operation tag ("Kron: matrix: ...").
//
// Matrices here are small: a register of N qubits produces a 2^N × 2^N
// composite, so every kernel favours clarity and deterministic loop order
// over blocking or parallelism.
package matrix
