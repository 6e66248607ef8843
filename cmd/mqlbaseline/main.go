// mqlbaseline maintains MQL baseline literals in test sources.
//
// Running the conformance tests with MQL_RESET_BASELINES set queues a
// rewrite for every mismatching baseline; this tool applies the queue
// back to the test files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mqlconform/mqlconform/baseline"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mqlbaseline",
		Short:         "Maintain MQL baseline literals in test sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newPendingCommand())
	cmd.AddCommand(newAcceptCommand())
	cmd.AddCommand(newResetCommand())

	return cmd
}

func newPendingCommand() *cobra.Command {
	var queuePath string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List queued baseline rewrites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := baseline.ReadQueue(queuePath)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending baseline rewrites")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d (%s)\n%s\n\n", e.File, e.Line, e.Test, e.MQL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&queuePath, "queue", baseline.QueuePath(), "rewrite queue file")
	return cmd
}

func newAcceptCommand() *cobra.Command {
	var queuePath string
	var keepQueue bool

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Apply queued baseline rewrites to test sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := baseline.ReadQueue(queuePath)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no pending baseline rewrites")
				return nil
			}

			n, err := baseline.Apply(entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rewrote %d baseline(s) from %d queued entr(ies)\n", n, len(entries))

			if keepQueue {
				return nil
			}
			return baseline.ClearQueue(queuePath)
		},
	}

	cmd.Flags().StringVar(&queuePath, "queue", baseline.QueuePath(), "rewrite queue file")
	cmd.Flags().BoolVar(&keepQueue, "keep-queue", false, "keep the queue file after applying")
	return cmd
}

func newResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset <file>...",
		Short: "Blank every baseline literal in the given test files",
		Long: `Blank every baseline literal in the given test files.

A follow-up test run with MQL_RESET_BASELINES set queues rewrites for all
of them, and "mqlbaseline accept" regenerates the literals from scratch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total := 0
			for _, path := range args {
				n, err := baseline.ResetFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: blanked %d baseline(s)\n", path, n)
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "blanked %d baseline(s) total\n", total)
			return nil
		},
	}
	return cmd
}
