// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/katalvlaran/tuneq/counts"
	"github.com/katalvlaran/tuneq/mitigation"
	"github.com/spf13/cobra"
)

// countsView is the json/yaml form of a correction.
type countsView struct {
	Outcome   string        `json:"outcome" yaml:"outcome"`
	Raw       counts.Counts `json:"raw" yaml:"raw"`
	Corrected counts.Counts `json:"corrected" yaml:"corrected"`
}

// NewMitigateCommand creates the mitigate command.
func NewMitigateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &calibrationFlags{}
	var countsPath string
	var maxCond float64

	cmd := &cobra.Command{
		Use:   "mitigate",
		Short: "Correct raw counts with a calibration document",
		Long: `Correct raw outcome counts with the inverse of the bias matrix built
from a calibration document.

A singular matrix, or one whose condition number exceeds --max-condition,
leaves the counts unchanged and prints a warning.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMitigate(rootOpts, flags, countsPath, maxCond, cmd)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&countsPath, "counts", "", "raw counts document (YAML or JSON)")
	cmd.Flags().Float64Var(&maxCond, "max-condition", 0, "fall back to raw counts above this condition number (0 disables)")
	_ = cmd.MarkFlagRequired("counts")

	return cmd
}

func runMitigate(opts *RootOptions, flags *calibrationFlags, countsPath string, maxCond float64, cmd *cobra.Command) error {
	if err := checkMaxCondition(maxCond); err != nil {
		return err
	}
	_, m, err := flags.build(cmd)
	if err != nil {
		return err
	}
	raw, err := loadCounts(countsPath)
	if err != nil {
		return err
	}

	corrected, res, err := mitigation.Apply(raw, m, mitigation.WithMaxCondition(maxCond))
	if err != nil {
		return err
	}
	opts.logger.WithField("outcome", res).Debug("counts mitigated")

	view := countsView{Outcome: res.String(), Raw: raw, Corrected: corrected}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	return f.Emit(view, func(w io.Writer) error {
		fmt.Fprintf(w, "Outcome: %s\n", bold("%s", view.Outcome))
		if res.Fallback() {
			warn(w, "bias matrix not invertible within limits; raw counts returned")
		}
		writeOutcomes(w, raw, corrected)

		return nil
	})
}

// checkMaxCondition rejects limits the mitigation options would panic on.
func checkMaxCondition(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		return fmt.Errorf("--max-condition must be finite and >= 0, got %v", limit)
	}

	return nil
}
