// SPDX-License-Identifier: MIT

// Package cli implements the tuneq command tree.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string

	logger *logrus.Logger // set in PersistentPreRunE
}

// NewRootCommand creates the root command for the tuneq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tuneq",
		Short: "tuneq - readout-error calibration and mitigation",
		Long: `Calibrate per-qubit readout bias and correct measured outcome counts.

Calibration results and counts are read from YAML (or JSON) documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(opts.Verbose, cmd.ErrOrStderr())

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(NewCircuitsCommand(opts))
	cmd.AddCommand(NewMatrixCommand(opts))
	cmd.AddCommand(NewMitigateCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))

	return cmd
}

// newLogger returns a text logger on w; verbose enables debug entries.
func newLogger(verbose bool, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}
