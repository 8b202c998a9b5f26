// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"

	"github.com/katalvlaran/tuneq/calibration"
	"github.com/katalvlaran/tuneq/circuit"
	"github.com/spf13/cobra"
)

// circuitView is one calibration spec in json/yaml output.
type circuitView struct {
	Label   string           `json:"label" yaml:"label"`
	Circuit *circuit.Circuit `json:"circuit" yaml:"circuit"`
}

// NewCircuitsCommand creates the circuits command.
func NewCircuitsCommand(rootOpts *RootOptions) *cobra.Command {
	var qubits int

	cmd := &cobra.Command{
		Use:   "circuits",
		Short: "List the calibration circuits for a register",
		Long: `List the 2N calibration circuits for an N-qubit register.

For every qubit i, qubit_<i>_prep0 measures the untouched register and
qubit_<i>_prep1 applies X to qubit i first. Run them on your backend and
collect the counts into a calibration document for "tuneq matrix".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCircuits(rootOpts, qubits, cmd)
		},
	}
	cmd.Flags().IntVarP(&qubits, "qubits", "n", 1, "register size")

	return cmd
}

func runCircuits(opts *RootOptions, qubits int, cmd *cobra.Command) error {
	specs, err := calibration.BuildCircuits(qubits)
	if err != nil {
		return err
	}
	views := make([]circuitView, len(specs))
	for i, s := range specs {
		views[i] = circuitView{Label: s.Label, Circuit: s.Circuit}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	return f.Emit(views, func(w io.Writer) error {
		fmt.Fprintln(w, bold("Calibration circuits for %d qubits", qubits))
		for _, v := range views {
			fmt.Fprintf(w, "%-*s  %s\n", labelWidth(views), v.Label, v.Circuit)
		}

		return nil
	})
}

func labelWidth(views []circuitView) int {
	w := 0
	for _, v := range views {
		w = max(w, len(v.Label))
	}

	return w
}
