// SPDX-License-Identifier: MIT

// Package tuneq: shared error taxonomy.
// Every category below wraps ErrTuneQ, so callers can match broadly
// (errors.Is(err, ErrTuneQ)) or specifically (errors.Is(err, ErrCalibration)).
// Subpackages wrap these with context via fmt.Errorf("%w: ...", ErrX).

package tuneq

import (
	"errors"
	"fmt"
)

var (
	// ErrTuneQ is the library-level error category.
	ErrTuneQ = errors.New("tuneq")

	// ErrCalibration is returned when calibration data cannot produce a bias
	// matrix: wrong runner arity, missing results, absent labels, zero-count
	// labels or non-positive shots.
	ErrCalibration = fmt.Errorf("%w: calibration failed", ErrTuneQ)

	// ErrOptimization belongs to circuit optimizer layers built on top of
	// this module. Nothing in tuneq itself returns it.
	ErrOptimization = fmt.Errorf("%w: optimization failed", ErrTuneQ)

	// ErrConfig signals a caller-level configuration error
	// (register size <= 0, nil runner, non-positive shots).
	ErrConfig = fmt.Errorf("%w: invalid configuration", ErrTuneQ)
)
