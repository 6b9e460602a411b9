// Command shmrpc-cleanup lists or unlinks stale POSIX shared-memory
// segments and named semaphores left behind by a crashed creator, per
// §6 "Cleanup utility". It never touches an object whose name does not
// match the given --prefix.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nunoatgithub/shm-rpc-bridge/cmd/shmrpc-cleanup/internal/cleanup"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shmrpc-cleanup",
		Short:         "List or unlink stale shm-rpc-bridge kernel objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var prefix string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stale shm segments and semaphores matching --prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				return fmt.Errorf("--prefix is required (an empty prefix would match every object on the host)")
			}
			objs, err := cleanup.Scan(prefix)
			if err != nil {
				return err
			}
			return cleanup.PrintTable(cmd.OutOrStdout(), objs)
		},
	}
	listCmd.Flags().StringVar(&prefix, "prefix", "", "channel name prefix to match (required)")

	unlinkCmd := &cobra.Command{
		Use:   "unlink",
		Short: "Unlink stale shm segments and semaphores matching --prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				return fmt.Errorf("--prefix is required (an empty prefix would match every object on the host)")
			}
			report, err := cleanup.Unlink(prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unlinked %d object(s), %d failure(s)\n", report.Unlinked, len(report.Failures))
			for _, f := range report.Failures {
				fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s (%s): %v\n", f.Name, f.Kind, f.Err)
			}
			return nil
		},
	}
	unlinkCmd.Flags().StringVar(&prefix, "prefix", "", "channel name prefix to match (required)")

	root.AddCommand(listCmd, unlinkCmd)
	return root
}
