// Package counts defines outcome-count distributions keyed by bit-strings and
// the bit-ordering convention shared by calibration and mitigation.
//
// Convention (reproduced everywhere in tuneq):
//
//	bits:   "q2 q1 q0"   qubit i is the character at position len-1-i
//	index:  int(reversed(bits), 2)
//
// Character i of the string is bit i of the index, so qubit 0 (the rightmost
// character) carries the highest weight. That is the same weight qubit 0 has
// in the composite bias matrix, which folds per-qubit factors with Kronecker
// products in qubit order 0..N-1.
//
//	"01" → 2    "10" → 1    "110" → 3
package counts
