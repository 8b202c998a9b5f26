// SPDX-License-Identifier: MIT

package counts

import "errors"

var (
	// ErrEmptyKey is returned when a distribution contains the empty bit-string.
	ErrEmptyKey = errors.New("counts: empty bit-string key")

	// ErrWidthMismatch is returned when keys of one distribution differ in length,
	// or when a distribution does not match the expected register width.
	ErrWidthMismatch = errors.New("counts: bit-string width mismatch")

	// ErrBadBit is returned for characters other than '0' and '1'.
	ErrBadBit = errors.New("counts: bit-string contains a non-binary character")

	// ErrNegativeCount is returned for negative counts.
	ErrNegativeCount = errors.New("counts: negative count")
)
