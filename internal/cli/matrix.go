// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"io"

	"github.com/katalvlaran/tuneq/calibration"
	"github.com/katalvlaran/tuneq/matrix"
	"github.com/spf13/cobra"
)

// matrixView is the json/yaml form of the matrix command.
type matrixView struct {
	Qubits     int         `json:"qubits" yaml:"qubits"`
	Shots      int         `json:"shots" yaml:"shots"`
	Matrix     [][]float64 `json:"matrix" yaml:"matrix"`
	Fidelities []float64   `json:"fidelities" yaml:"fidelities"`
	Condition  *float64    `json:"condition,omitempty" yaml:"condition,omitempty"`
	Singular   bool        `json:"singular" yaml:"singular"`
}

// calibrationFlags are shared by matrix and mitigate.
type calibrationFlags struct {
	path   string
	qubits int
	shots  int
}

func (c *calibrationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.path, "calibration", "c", "", "calibration document (YAML or JSON)")
	cmd.Flags().IntVarP(&c.qubits, "qubits", "n", 0, "register size (overrides the document)")
	cmd.Flags().IntVarP(&c.shots, "shots", "s", 0, "calibration shot count (overrides the document)")
	_ = cmd.MarkFlagRequired("calibration")
}

// build loads the document, applies flag overrides and builds the composite matrix.
func (c *calibrationFlags) build(cmd *cobra.Command) (*CalibrationDocument, *matrix.Dense, error) {
	doc, err := loadCalibration(c.path)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("qubits") {
		doc.Qubits = c.qubits
	}
	if cmd.Flags().Changed("shots") {
		doc.Shots = c.shots
	}
	m, err := calibration.BuildMatrix(doc.Qubits, doc.CalibrationResults(), doc.Shots)
	if err != nil {
		return nil, nil, err
	}

	return doc, m, nil
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &calibrationFlags{}

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Build the composite bias matrix from calibration results",
		Long: `Build the 2^N × 2^N readout bias matrix from a calibration document
and report per-qubit assignment fidelity and the 1-norm condition number.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(rootOpts, flags, cmd)
		},
	}
	flags.register(cmd)

	return cmd
}

func runMatrix(opts *RootOptions, flags *calibrationFlags, cmd *cobra.Command) error {
	doc, m, err := flags.build(cmd)
	if err != nil {
		return err
	}
	fid, err := calibration.Fidelities(doc.Qubits, doc.CalibrationResults())
	if err != nil {
		return err
	}
	cond, err := matrix.ConditionNumber(m)
	if err != nil {
		return err
	}
	rows := make([][]float64, m.Rows())
	for i := range rows {
		if rows[i], err = m.Row(i); err != nil {
			return err
		}
	}
	opts.logger.WithField("qubits", doc.Qubits).Debug("bias matrix built")

	view := matrixView{
		Qubits:     doc.Qubits,
		Shots:      doc.Shots,
		Matrix:     rows,
		Fidelities: fid,
		Condition:  conditionValue(cond),
		Singular:   conditionValue(cond) == nil,
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	return f.Emit(view, func(w io.Writer) error {
		fmt.Fprintln(w, bold("Bias matrix (%d×%d)", m.Rows(), m.Cols()))
		fmt.Fprint(w, m)
		for q, v := range fid {
			fmt.Fprintf(w, "Fidelity qubit %d: %.4f\n", q, v)
		}
		writeCondition(w, view.Condition)

		return nil
	})
}
