package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/nunoatgithub/shm-rpc-bridge/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SHM_RPC_CHANNEL", "SHM_RPC_BUFFER_SIZE", "SHM_RPC_TIMEOUT_SECONDS", "SHM_RPC_LOG_LEVEL"} {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChannelName != config.DefaultChannelName {
		t.Fatalf("ChannelName: got %q want %q", cfg.ChannelName, config.DefaultChannelName)
	}
	if cfg.BufferSize != config.DefaultBufferSize {
		t.Fatalf("BufferSize: got %d want %d", cfg.BufferSize, config.DefaultBufferSize)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Fatalf("Timeout: got %v want %v", cfg.Timeout, config.DefaultTimeout)
	}
	if cfg.LogLevel != config.DefaultLogLevel {
		t.Fatalf("LogLevel: got %q want %q", cfg.LogLevel, config.DefaultLogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("SHM_RPC_CHANNEL", "my_channel")
	os.Setenv("SHM_RPC_BUFFER_SIZE", "8192")
	os.Setenv("SHM_RPC_TIMEOUT_SECONDS", "2")
	os.Setenv("SHM_RPC_LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChannelName != "my_channel" {
		t.Fatalf("ChannelName: got %q", cfg.ChannelName)
	}
	if cfg.BufferSize != 8192 {
		t.Fatalf("BufferSize: got %d", cfg.BufferSize)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("Timeout: got %v", cfg.Timeout)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("LogLevel: got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidBufferSize(t *testing.T) {
	clearEnv(t)
	os.Setenv("SHM_RPC_BUFFER_SIZE", "0")
	if _, err := config.Load(""); err == nil {
		t.Fatalf("expected validation error for buffer_size=0")
	}
}
