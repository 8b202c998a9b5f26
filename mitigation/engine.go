// SPDX-License-Identifier: MIT

package mitigation

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/matrix"
)

// Result reports which path Apply took.
type Result int

const (
	// Failed accompanies a non-nil error.
	Failed Result = iota
	// Corrected means M⁻¹ was applied.
	Corrected
	// SkippedEmpty means the input total was zero and is returned unchanged.
	SkippedEmpty
	// SkippedSingular means the bias matrix is exactly singular; raw counts are returned.
	SkippedSingular
	// SkippedIllConditioned means the condition number exceeded the configured
	// limit; raw counts are returned.
	SkippedIllConditioned
)

// String returns the snake_case name used in logs, metrics and CLI output.
func (r Result) String() string {
	switch r {
	case Corrected:
		return "corrected"
	case SkippedEmpty:
		return "skipped_empty"
	case SkippedSingular:
		return "skipped_singular"
	case SkippedIllConditioned:
		return "skipped_ill_conditioned"
	default:
		return "failed"
	}
}

// Fallback reports whether the raw counts were returned because of the matrix.
func (r Result) Fallback() bool {
	return r == SkippedSingular || r == SkippedIllConditioned
}

const opApply = "Apply"

func applyErrorf(err error) error {
	return fmt.Errorf("%s: %w", opApply, err)
}

// Apply corrects raw counts with the inverse of the composite bias matrix m.
//
// Implementation:
//   - Stage 1: a zero total returns a copy of raw with SkippedEmpty, whatever its keys.
//     Otherwise validate the counts (equal-width binary keys, non-negative values).
//   - Stage 2: require m square with dimension 2^N for register width N.
//   - Stage 3: p[Index(bits)] = count/total for every present key; absent keys stay 0.
//   - Stage 4: invert m. Exactly singular → copy of raw, SkippedSingular. With a
//     condition limit, ‖m‖₁·‖m⁻¹‖₁ > limit → copy of raw, SkippedIllConditioned.
//   - Stage 5: q = m⁻¹·p; clip q at 0; renormalize when Σq > 0.
//   - Stage 6: out[BitString(i, N)] = round(q[i]·total) for every i in [0, 2^N),
//     exact halves rounding to the even integer.
//
// Behavior highlights:
//   - The output key-set always covers all 2^N bit-strings on the Corrected path.
//   - An all-clipped vector yields all-zero counts; this is not an error.
//   - The input map is never mutated.
//
// Errors:
//   - counts.ErrEmptyKey, ErrWidthMismatch, ErrBadBit, ErrNegativeCount;
//     matrix.ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch. All wrapped with "Apply: ".
//
// Complexity:
//   - Time O(4^N + 8^N) dominated by the inversion, Space O(4^N).
func Apply(raw counts.Counts, m matrix.Matrix, opts ...ApplyOption) (counts.Counts, Result, error) {
	o := gatherApplyOptions(opts...)

	// Stage 1: counts. An empty input is returned before its keys are inspected.
	total := raw.Total()
	if total == 0 {
		return raw.Clone(), SkippedEmpty, nil
	}
	width, err := raw.Width()
	if err != nil {
		return nil, Failed, applyErrorf(err)
	}

	// Stage 2: matrix shape.
	if err = matrix.ValidateSquare(m); err != nil {
		return nil, Failed, applyErrorf(err)
	}
	size := 1 << width
	if m.Rows() != size {
		return nil, Failed, applyErrorf(fmt.Errorf("%w: %d-bit counts need a %d×%d matrix, got %d×%d",
			matrix.ErrDimensionMismatch, width, size, size, m.Rows(), m.Cols()))
	}

	// Stage 3: probability vector.
	p := make([]float64, size)
	for bits, c := range raw {
		p[counts.Index(bits)] = float64(c) / float64(total)
	}

	// Stage 4: inversion with fail-soft fallbacks.
	inv, err := matrix.Inverse(m)
	if errors.Is(err, matrix.ErrSingular) {
		return raw.Clone(), SkippedSingular, nil
	}
	if err != nil {
		return nil, Failed, applyErrorf(err)
	}
	if o.maxCond > 0 {
		cond, err := condition(m, inv)
		if err != nil {
			return nil, Failed, applyErrorf(err)
		}
		if cond > o.maxCond {
			return raw.Clone(), SkippedIllConditioned, nil
		}
	}

	// Stage 5: correct, clip, renormalize.
	q, err := matrix.MatVec(inv, p)
	if err != nil {
		return nil, Failed, applyErrorf(err)
	}
	var norm float64
	for i := range q {
		if q[i] < 0 {
			q[i] = 0
		}
		norm += q[i]
	}
	if norm > 0 {
		for i := range q {
			q[i] /= norm
		}
	}

	// Stage 6: back to counts over the full key-set.
	out := make(counts.Counts, size)
	for i, v := range q {
		out[counts.BitString(i, width)] = int(math.RoundToEven(v * float64(total)))
	}

	return out, Corrected, nil
}

// condition returns ‖m‖₁·‖inv‖₁ without a second inversion.
func condition(m, inv matrix.Matrix) (float64, error) {
	a, err := matrix.Norm1(m)
	if err != nil {
		return 0, err
	}
	b, err := matrix.Norm1(inv)
	if err != nil {
		return 0, err
	}

	return a * b, nil
}
