// SPDX-License-Identifier: MIT

// Command tuneq calibrates readout bias and mitigates measured counts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/katalvlaran/tuneq/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
