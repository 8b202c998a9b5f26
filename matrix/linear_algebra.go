// SPDX-License-Identifier: MIT
// Package matrix provides the linear-algebra kernels used by calibration and
// mitigation: Kronecker product, matrix-vector product, pivoted inverse and
// 1-norm condition number.
//
// Purpose:
//   - Keep every kernel deterministic (fixed i→j→k loop orders).
//   - Validate through the central validators and wrap failures with op tags.
//
// Notes:
//   - Kernels accept any Matrix; non-Dense inputs are materialized once via
//     asDense so the inner loops always run over a flat slice.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial sum value for accumulations.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting an exactly zero pivot column.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping.
const (
	opKron      = "Kron"
	opMatVec    = "MatVec"
	opInverse   = "Inverse"
	opCondition = "ConditionNumber"
	opNorm1     = "Norm1"
	opAllClose  = "AllClose"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// asDense returns m itself when it is a *Dense, otherwise a Dense copy built via At.
// Callers must validate m is non-nil first.
func asDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < out.r; i++ {
		for j := 0; j < out.c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}

// Kron computes the Kronecker (tensor) product a ⊗ b.
//
// Implementation:
//   - Stage 1: validate both operands non-nil; allocate (ra·rb)×(ca·cb).
//   - Stage 2: out[i*rb+k, j*cb+l] = a[i,j]·b[k,l] in fixed i→j→k→l order.
//
// Behavior highlights:
//   - Same block layout as numpy.kron: a's indices are the most significant.
//   - Folding per-qubit 2×2 matrices from the 1×1 seed [[1]] in qubit order
//     0..N-1 yields the 2^N × 2^N composite bias matrix.
//
// Complexity:
//   - Time O(ra·ca·rb·cb), Space O(ra·ca·rb·cb).
func Kron(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}

	out, err := NewDense(da.r*db.r, da.c*db.c)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}

	var i, j, k, l int
	var av float64
	for i = 0; i < da.r; i++ {
		for j = 0; j < da.c; j++ {
			av = da.data[i*da.c+j]
			if av == 0 {
				continue // block stays zero
			}
			for k = 0; k < db.r; k++ {
				row := (i*db.r + k) * out.c
				for l = 0; l < db.c; l++ {
					out.data[row+j*db.c+l] = av * db.data[k*db.c+l]
				}
			}
		}
	}

	return out, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, d.r)
	var i, j, base int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			if x[j] != 0 { // skip zero multiplications; probability vectors are sparse
				acc += d.data[base+j] * x[j]
			}
		}
		y[i] = acc
	}

	return y, nil
}

// Inverse computes A^{-1} by Gauss–Jordan elimination with partial pivoting.
// The input must be non-nil and square. Produces a new Dense; does not mutate the input.
//
// Implementation:
//   - Stage 1: ValidateSquare(m). Copy A into a work buffer and start inv = I.
//   - Stage 2: For each column col, pick the row r ≥ col with the largest |work[r,col]|.
//     If that magnitude is exactly zero the matrix is exactly singular → ErrSingular.
//   - Stage 3: Swap rows and eliminate col from every other row with the ratio
//     work[r,col]/pivot, applying the same row operations to inv.
//   - Stage 4: Divide each row of inv by the remaining diagonal of work.
//
// Behavior highlights:
//   - Only EXACT singularity is reported. Nearly singular inputs invert to large
//     values; use ConditionNumber upstream when that matters.
//   - Rows that are bitwise identical (e.g. a Kronecker factor with two equal
//     rows) reduce to an exact zero row, so such composites are reported singular.
//   - Permutation matrices (e.g. [[0,1],[1,0]]) invert correctly thanks to pivoting.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare (ValidateSquare), ErrSingular.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Inverse(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := src.r
	work := src.Clone().(*Dense) // never mutate the caller's matrix
	inv, err := NewIdentity(n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	w, v := work.data, inv.data
	var col, r, j, piv int
	var best, abs, scale, f float64
	for col = 0; col < n; col++ {
		// Partial pivoting: largest magnitude in column col at or below the diagonal.
		piv, best = col, math.Abs(w[col*n+col])
		for r = col + 1; r < n; r++ {
			if abs = math.Abs(w[r*n+col]); abs > best {
				piv, best = r, abs
			}
		}
		if best == ZeroPivot {
			return nil, matrixErrorf(opInverse, ErrSingular)
		}
		if piv != col {
			swapRows(w, n, piv, col)
			swapRows(v, n, piv, col)
		}

		// Eliminate col from all other rows (above and below). The ratio form keeps
		// bitwise-identical rows identical, so their difference is an exact zero.
		p := w[col*n+col]
		for r = 0; r < n; r++ {
			if r == col || w[r*n+col] == 0 {
				continue
			}
			f = w[r*n+col] / p
			for j = 0; j < n; j++ {
				w[r*n+j] -= f * w[col*n+j]
				v[r*n+j] -= f * v[col*n+j]
			}
		}
	}

	// w is now diagonal; scale each row of inv by the reciprocal pivot.
	for r = 0; r < n; r++ {
		scale = 1.0 / w[r*n+r]
		for j = 0; j < n; j++ {
			v[r*n+j] *= scale
		}
	}

	return inv, nil
}

// swapRows exchanges rows a and b of an n-column flat buffer in place.
func swapRows(data []float64, n, a, b int) {
	ra, rb := data[a*n:(a+1)*n], data[b*n:(b+1)*n]
	for j := 0; j < n; j++ {
		ra[j], rb[j] = rb[j], ra[j]
	}
}

// oneNorm returns the maximum absolute column sum of d.
func oneNorm(d *Dense) float64 {
	var best, sum float64
	for j := 0; j < d.c; j++ {
		sum = ZeroSum
		for i := 0; i < d.r; i++ {
			sum += math.Abs(d.data[i*d.c+j])
		}
		if sum > best {
			best = sum
		}
	}

	return best
}

// Norm1 returns the induced 1-norm ‖A‖₁ (maximum absolute column sum).
func Norm1(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opNorm1, err)
	}
	d, err := asDense(m)
	if err != nil {
		return 0, matrixErrorf(opNorm1, err)
	}

	return oneNorm(d), nil
}

// ConditionNumber returns the 1-norm condition number ‖A‖₁·‖A⁻¹‖₁.
// Exactly singular input yields +Inf with a nil error; the identity yields 1.
//
// Errors: ErrNilMatrix, ErrNonSquare.
// Complexity: O(n^3) (one inversion).
func ConditionNumber(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opCondition, err)
	}
	d, err := asDense(m)
	if err != nil {
		return 0, matrixErrorf(opCondition, err)
	}
	inv, err := Inverse(d)
	if err != nil {
		return math.Inf(1), nil // ErrSingular is the only failure left after validation
	}

	return oneNorm(d) * oneNorm(inv), nil
}

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - negative tolerances are normalized to their absolute values; NaN/Inf are rejected.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	da, err := asDense(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	db, err := asDense(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	for idx := range da.data {
		if math.Abs(da.data[idx]-db.data[idx]) > atol+rtol*math.Abs(db.data[idx]) {
			return false, nil // early exit on first violation
		}
	}

	return true, nil
}
