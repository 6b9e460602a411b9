// Command shmrpc-calculator-client issues one call against a running
// shmrpc-calculator-server and prints the result, exercising §8 end-to-end
// scenarios 1-3 from the command line.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/config"
	"github.com/nunoatgithub/shm-rpc-bridge/rpc/client"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shmrpc-calculator-client",
		Short:         "Demo client for shmrpc-calculator-server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file path")

	call := func(use, method string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " A B",
			Short: fmt.Sprintf("call %s(A, B)", method),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("parse A: %w", err)
				}
				b, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("parse B: %w", err)
				}
				return callMethod(cmd, configPath, method, map[string]any{"a": a, "b": b})
			},
		}
	}

	root.AddCommand(call("add", "add"))
	root.AddCommand(call("divide", "divide"))
	root.AddCommand(&cobra.Command{
		Use:   "call METHOD",
		Short: "call an arbitrary method with no params (e.g. to exercise 'Unknown method')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callMethod(cmd, configPath, args[0], nil)
		},
	})
	return root
}

func callMethod(cmd *cobra.Command, configPath, method string, params map[string]any) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	c, err := client.Open(api.ChannelParams{Name: cfg.ChannelName, BufferSize: cfg.BufferSize, Timeout: cfg.Timeout})
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.Call(method, params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}
