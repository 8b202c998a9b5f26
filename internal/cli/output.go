// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/katalvlaran/tuneq"
	"github.com/katalvlaran/tuneq/counts"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Calibration or mitigation failure
	ExitCommandError = 2 // Bad flags, unreadable documents
)

// GetExitCode maps an error returned by Execute to a process exit code.
func GetExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, tuneq.ErrTuneQ):
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// OutputFormatter writes a command result in the configured format.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Emit encodes data as JSON or YAML, or calls text for the text format.
func (f *OutputFormatter) Emit(data any, text func(io.Writer) error) error {
	switch f.Format {
	case FormatJSON:
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")

		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}

		return enc.Close()
	default:
		return text(f.Writer)
	}
}

func bold(format string, a ...any) string { return color.New(color.Bold).Sprintf(format, a...) }

func warn(w io.Writer, format string, a ...any) {
	color.New(color.FgYellow).Fprintf(w, "warning: "+format+"\n", a...)
}

// conditionValue returns nil for a singular matrix, which JSON cannot encode as +Inf.
func conditionValue(c float64) *float64 {
	if math.IsInf(c, 1) {
		return nil
	}

	return &c
}

func writeCondition(w io.Writer, c *float64) {
	if c == nil {
		fmt.Fprintf(w, "Condition number: %s\n", bold("singular"))
		return
	}
	fmt.Fprintf(w, "Condition number: %s\n", bold("%.4f", *c))
}

// writeOutcomes prints raw and corrected counts side by side over the union of keys.
func writeOutcomes(w io.Writer, raw, corrected counts.Counts) {
	seen := map[string]bool{}
	var keys []string
	for _, c := range []counts.Counts{raw, corrected} {
		for k := range c {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	kw := len("outcome")
	for _, k := range keys {
		kw = max(kw, len(k))
	}
	fmt.Fprintf(w, "%-*s %10s %10s\n", kw, "outcome", "raw", "corrected")
	for _, k := range keys {
		fmt.Fprintf(w, "%-*s %10d %10d\n", kw, k, raw[k], corrected[k])
	}
}
