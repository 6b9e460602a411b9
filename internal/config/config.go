// Package config loads the two wire-relevant channel parameters named in
// §6 (buffer_size, timeout) plus the channel name and log level, the same
// precedence and library as the teacher's pkg/config: environment
// variables (SHM_RPC_* prefix) over an optional config file over defaults,
// unmarshaled with viper and checked with go-playground/validator.
package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the full set of configurable parameters for a channel
// endpoint, per §6 "Channel configuration" plus the logging addition
// in §0.
type Config struct {
	ChannelName string        `mapstructure:"channel_name" validate:"required"`
	BufferSize  int           `mapstructure:"buffer_size" validate:"required,gt=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	LogLevel    string        `mapstructure:"log_level" validate:"required,oneof=DEBUG INFO WARNING ERROR debug info warning error"`
}

// DefaultBufferSize is "a few KiB for small-message channels" per §6.
const DefaultBufferSize = 4096

// DefaultTimeout applies uniformly to send and receive, per §6.
const DefaultTimeout = 5 * time.Second

// DefaultChannelName is used when SHM_RPC_CHANNEL is unset.
const DefaultChannelName = "shmrpc"

// DefaultLogLevel matches §6 "WARNING by default".
const DefaultLogLevel = "WARNING"

var validate = validator.New()

// Load reads configuration from environment variables (SHM_RPC_ prefix)
// and, if present, an optional file at configPath, falling back to
// defaults for anything unset, then validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	setupEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(secondsToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("channel_name", DefaultChannelName)
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
}

func setupEnv(v *viper.Viper) {
	v.SetEnvPrefix("SHM_RPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("channel_name", "SHM_RPC_CHANNEL")
	_ = v.BindEnv("buffer_size", "SHM_RPC_BUFFER_SIZE")
	_ = v.BindEnv("timeout", "SHM_RPC_TIMEOUT_SECONDS")
	_ = v.BindEnv("log_level", "SHM_RPC_LOG_LEVEL")
}

// secondsToDurationHook converts a plain number of seconds (as loaded from
// SHM_RPC_TIMEOUT_SECONDS or a config file) into a time.Duration, the same
// decode-hook idiom as the teacher's durationDecodeHook, except the source
// unit is seconds rather than a Go duration string.
func secondsToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return time.Duration(secs * float64(time.Second)), nil
			}
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}
