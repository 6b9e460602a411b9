// Command shmrpc-accumulator-server is the demo server for §8 end-to-end
// scenario 4: a stateful server holding per-key running totals in its own
// address space across calls.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/config"
	"github.com/nunoatgithub/shm-rpc-bridge/internal/logging"
	"github.com/nunoatgithub/shm-rpc-bridge/rpc/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "shmrpc-accumulator-server",
		Short:         "Demo stateful shm-rpc-bridge server: accumulate/clear over named totals",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file path")
	return cmd
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	s, err := server.New(api.ChannelParams{Name: cfg.ChannelName, BufferSize: cfg.BufferSize, Timeout: cfg.Timeout})
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)
	s.SetLogger(logger)

	var mu sync.Mutex
	totals := make(map[string]float64)

	s.Register("accumulate", func(params map[string]any) (any, error) {
		key, ok := api.String(params["key"])
		if !ok {
			return nil, api.New(api.KindProtocol, "accumulate requires a string key")
		}
		amount, ok := api.Float64(params["amount"])
		if !ok {
			return nil, api.New(api.KindProtocol, "accumulate requires a numeric amount")
		}
		mu.Lock()
		defer mu.Unlock()
		totals[key] += amount
		return totals[key], nil
	})
	s.Register("clear", func(params map[string]any) (any, error) {
		key, ok := api.String(params["key"])
		if !ok {
			return nil, api.New(api.KindProtocol, "clear requires a string key")
		}
		mu.Lock()
		defer mu.Unlock()
		delete(totals, key)
		return nil, nil
	})

	logger.Infof("shmrpc-accumulator-server: listening on channel %q", cfg.ChannelName)
	return s.Start()
}
