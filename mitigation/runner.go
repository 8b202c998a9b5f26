// SPDX-License-Identifier: MIT

package mitigation

import (
	"context"

	"github.com/katalvlaran/tuneq/counts"
)

// Runner executes circuits on some backend.
//
// Contract:
//   - circuits are opaque; the session passes them through unchanged.
//   - The result must hold one Counts per circuit, in input order.
//   - params are the caller's keyword options, forwarded verbatim.
//   - ctx comes from the caller of Open or Run; the session adds no deadline.
type Runner interface {
	Run(ctx context.Context, circuits []any, shots int, params map[string]any) ([]counts.Counts, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, circuits []any, shots int, params map[string]any) ([]counts.Counts, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, circuits []any, shots int, params map[string]any) ([]counts.Counts, error) {
	return f(ctx, circuits, shots, params)
}
