// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Row normalization for turning per-row outcome tallies into
//     row-stochastic (conditional probability) matrices.
//
// Determinism & Performance:
//   - Fixed i→j traversal; Dense fast path over the flat buffer.

package matrix

import "math"

const opNormalizeRowsL1 = "NormalizeRowsL1"

// NormalizeRowsL1 returns a copy of X whose rows each sum (in absolute value) to 1,
// together with the original L1 norms.
//
// Implementation:
//   - Stage 1: Validate X (non-nil).
//   - Stage 2: Compute per-row L1 norms Σ_j |x_ij| in a deterministic pass.
//   - Stage 3: Divide each element by its row norm; rows with norm 0 are copied unchanged.
//
// Behavior highlights:
//   - Division (not multiplication by 1/norm) keeps count ratios such as 90/100
//     correctly rounded.
//   - Degenerate rows are left for the caller to reject; norms[i] == 0 flags them.
//
// Errors:
//   - ErrNilMatrix from validation; wrapped At errors on the generic path.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) (+ O(r) norms).
func NormalizeRowsL1(X Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	d, err := asDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}

	r, c := d.r, d.c
	norms := make([]float64, r)
	out := &Dense{r: r, c: c, data: make([]float64, r*c)}
	var i, j, base int
	var s float64
	for i = 0; i < r; i++ {
		base = i * c
		s = ZeroSum
		for j = 0; j < c; j++ {
			s += math.Abs(d.data[base+j])
		}
		norms[i] = s
		for j = 0; j < c; j++ {
			if s > 0 {
				out.data[base+j] = d.data[base+j] / s
			} else {
				out.data[base+j] = d.data[base+j]
			}
		}
	}

	return out, norms, nil
}
