// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/tuneq/circuit"
	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/mitigation"
	"github.com/katalvlaran/tuneq/sim"
	"github.com/spf13/cobra"
)

// simulateView is the json/yaml form of the simulate command.
type simulateView struct {
	Qubits    int           `json:"qubits" yaml:"qubits"`
	Shots     int           `json:"shots" yaml:"shots"`
	State     string        `json:"state" yaml:"state"`
	Condition *float64      `json:"condition,omitempty" yaml:"condition,omitempty"`
	Raw       counts.Counts `json:"raw" yaml:"raw"`
	Corrected counts.Counts `json:"corrected" yaml:"corrected"`
}

type simulateFlags struct {
	qubits  int
	shots   int
	p01     []float64
	p10     []float64
	state   string
	maxCond float64
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Calibrate and mitigate against a simulated noisy readout",
		Long: `Open a mitigation session against a deterministic simulated device,
prepare a basis state, and print raw and corrected counts.

--p01 and --p10 take one probability per qubit, or a single value used
for every qubit. --state is written with qubit 0 as the rightmost bit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, flags, cmd)
		},
	}
	cmd.Flags().IntVarP(&flags.qubits, "qubits", "n", 1, "register size")
	cmd.Flags().IntVarP(&flags.shots, "shots", "s", mitigation.DefaultShots, "shots per circuit")
	cmd.Flags().Float64SliceVar(&flags.p01, "p01", nil, "P(read 1 | prepared 0) per qubit")
	cmd.Flags().Float64SliceVar(&flags.p10, "p10", nil, "P(read 0 | prepared 1) per qubit")
	cmd.Flags().StringVar(&flags.state, "state", "", "basis state to prepare (default all zeros)")
	cmd.Flags().Float64Var(&flags.maxCond, "max-condition", 0, "fall back to raw counts above this condition number (0 disables)")

	return cmd
}

func runSimulate(opts *RootOptions, flags *simulateFlags, cmd *cobra.Command) error {
	n := flags.qubits
	if err := checkMaxCondition(flags.maxCond); err != nil {
		return err
	}
	state := flags.state
	if state == "" && n > 0 {
		state = strings.Repeat("0", n)
	}
	prep, err := prepareState(n, state)
	if err != nil {
		return err
	}
	dev := &sim.NoisyReadout{Qubits: n, P01: broadcast(flags.p01, n), P10: broadcast(flags.p10, n)}
	if err = dev.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	view := simulateView{Qubits: n, Shots: flags.shots, State: state}
	err = mitigation.With(ctx, n, dev, func(s *mitigation.Session) error {
		raw, err := dev.Run(ctx, []any{prep}, s.Shots(), nil)
		if err != nil {
			return err
		}
		corrected, err := s.Run(ctx, prep, mitigation.WithRawCounts(raw[0]))
		if err != nil {
			return err
		}
		view.Condition = conditionValue(s.Condition())
		view.Raw, view.Corrected = raw[0], corrected

		return nil
	},
		mitigation.WithShots(flags.shots),
		mitigation.WithLogger(opts.logger),
		mitigation.WithConditionLimit(flags.maxCond),
	)
	if err != nil {
		return err
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	return f.Emit(view, func(w io.Writer) error {
		fmt.Fprintln(w, bold("Simulated %d qubits, %d shots, state %s", n, flags.shots, state))
		writeCondition(w, view.Condition)
		writeOutcomes(w, view.Raw, view.Corrected)

		return nil
	})
}

// prepareState returns a circuit that prepares the basis state bits,
// qubit q being bits[len-1-q].
func prepareState(n int, bits string) (*circuit.Circuit, error) {
	c, err := circuit.New(n)
	if err != nil {
		return nil, err
	}
	width, err := counts.Counts{bits: 1}.Width()
	if err != nil {
		return nil, fmt.Errorf("--state: %w", err)
	}
	if width != n {
		return nil, fmt.Errorf("--state %q: %w: want %d bits", bits, counts.ErrWidthMismatch, n)
	}
	for q := 0; q < n; q++ {
		if counts.Bit(bits, q) == '1' {
			if err = c.AddGate(circuit.X, q); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// broadcast repeats a single value n times; other lengths pass through for validation.
func broadcast(ps []float64, n int) []float64 {
	if len(ps) != 1 || n <= 1 {
		if len(ps) == 0 {
			return nil
		}
		return ps
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = ps[0]
	}

	return out
}
