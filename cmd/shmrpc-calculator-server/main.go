// Command shmrpc-calculator-server is the demo server for §8 end-to-end
// scenarios 1-3: it registers "add" and "divide" and serves requests
// until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
	"github.com/nunoatgithub/shm-rpc-bridge/control"
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
		Use:           "shmrpc-calculator-server",
		Short:         "Demo shm-rpc-bridge server exposing add and divide",
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
	s.SetMetrics(control.NewMetricsRegistry(prometheus.DefaultRegisterer))
	logger := logging.New(cfg.LogLevel)
	s.SetLogger(logger)

	s.Register("add", func(params map[string]any) (any, error) {
		a, ok1 := api.Float64(params["a"])
		b, ok2 := api.Float64(params["b"])
		if !ok1 || !ok2 {
			return nil, api.New(api.KindProtocol, "add requires numeric a and b")
		}
		return a + b, nil
	})
	s.Register("divide", func(params map[string]any) (any, error) {
		a, ok1 := api.Float64(params["a"])
		b, ok2 := api.Float64(params["b"])
		if !ok1 || !ok2 {
			return nil, api.New(api.KindProtocol, "divide requires numeric a and b")
		}
		if b == 0 {
			return nil, fmt.Errorf("Division by zero")
		}
		return a / b, nil
	})

	logger.Infof("shmrpc-calculator-server: listening on channel %q", cfg.ChannelName)
	return s.Start()
}
