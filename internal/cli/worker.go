package cli

import (
	"github.com/spf13/cobra"

	"github.com/aryankumar/batchrun/internal/executor"
)

// newWorkerCmd creates the hidden command a process pool child runs.
// Requests arrive as JSON lines on stdin, responses leave on stdout.
func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Serve tasks for a parent batchrun process",
		Hidden: true,
		Args:   cobra.NoArgs,
		// stdout carries the protocol, so no logging setup here
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return executor.RunWorker(cmd.Context())
		},
	}

	return cmd
}
