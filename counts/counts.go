// SPDX-License-Identifier: MIT

package counts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Counts maps a fixed-length bit-string to the number of shots that produced it.
// Absent keys mean zero. All keys of one Counts share the same length.
type Counts map[string]int

// Total returns the sum of all counts (the number of shots represented).
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}

	return total
}

// Clone returns an independent copy. A nil Counts clones to nil.
func (c Counts) Clone() Counts {
	if c == nil {
		return nil
	}
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}

	return out
}

// Width validates the distribution and returns its register width.
// An empty distribution has width 0.
//
// Errors: ErrEmptyKey, ErrWidthMismatch, ErrBadBit, ErrNegativeCount,
// each wrapped with the offending key.
func (c Counts) Width() (int, error) {
	width := -1
	for _, key := range c.Keys() { // sorted, so the reported key is deterministic
		if key == "" {
			return 0, ErrEmptyKey
		}
		if width < 0 {
			width = len(key)
		} else if len(key) != width {
			return 0, fmt.Errorf("%q has width %d, want %d: %w", key, len(key), width, ErrWidthMismatch)
		}
		if strings.Trim(key, "01") != "" {
			return 0, fmt.Errorf("%q: %w", key, ErrBadBit)
		}
		if c[key] < 0 {
			return 0, fmt.Errorf("%q: %d: %w", key, c[key], ErrNegativeCount)
		}
	}
	if width < 0 {
		return 0, nil
	}

	return width, nil
}

// Keys returns the bit-strings in lexicographic order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// String renders the distribution as {00:10 01:5} in key order.
func (c Counts) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(c[k]))
	}
	sb.WriteByte('}')

	return sb.String()
}

// Bit returns the measured value ('0' or '1') of qubit in bits.
// Qubit i lives at position len(bits)-1-i. The caller guarantees 0 <= qubit < len(bits).
func Bit(bits string, qubit int) byte {
	return bits[len(bits)-1-qubit]
}

// Index maps a bit-string to its vector index, int(reversed(bits), 2).
// The caller guarantees bits is a validated binary string.
func Index(bits string) int {
	idx := 0
	for i := len(bits) - 1; i >= 0; i-- { // walk the reversed string most-significant first
		idx <<= 1
		if bits[i] == '1' {
			idx |= 1
		}
	}

	return idx
}

// BitString is the inverse of Index for the given width.
func BitString(index, width int) string {
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		// Character i of the string is bit i of the index.
		if index>>i&1 == 1 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}

	return string(buf)
}

// All returns every bit-string of the given width in index order.
func All(width int) []string {
	n := 1 << width
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = BitString(i, width)
	}

	return out
}
