// Package calibration characterizes each qubit's readout channel in
// isolation and composes the results into one bias (confusion) matrix.
//
// For every qubit i two circuits are built: one that leaves the register in
// |0…0⟩ and one that flips qubit i with an X gate. Both measure all qubits.
// From their outcome counts the 2×2 row-stochastic matrix
//
//	M_i = [[P(meas 0 | prep 0), P(meas 1 | prep 0)],
//	       [P(meas 0 | prep 1), P(meas 1 | prep 1)]]
//
// is estimated, marginalizing over the other qubits. The composite matrix is
// M_0 ⊗ M_1 ⊗ … ⊗ M_{N-1}, folded from the seed [[1]].
//
// Treating readout errors as independent per qubit needs O(N) calibration
// circuits instead of 2^N, at the cost of ignoring crosstalk.
package calibration
