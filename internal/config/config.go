// internal/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config carries the server's runtime settings. Every flag can also be set
// through an OVERTINCTION_-prefixed environment variable.
type Config struct {
	Bind        string
	Port        int
	BaseURL     string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	HistQueue   string
	LogLevel    string
}

// Validate checks the settings that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("--database-url is required")
	}
	return nil
}

// ListenAddr is the bind address handed to the HTTP listener.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// RunFunc is the server entrypoint invoked once flags are parsed and valid.
type RunFunc func(ctx context.Context, cfg *Config) error

// NewCommand builds the root command, binding every flag to a matching
// OVERTINCTION_ environment variable.
func NewCommand(cfg *Config, run RunFunc) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("OVERTINCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "overtinction",
		Short:         "A round-based social deduction quiz game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: OVERTINCTION_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: OVERTINCTION_PORT)")
	fs.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "externally reachable URL prefix, used for QR join links (env: OVERTINCTION_BASE_URL)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres connection string (env: OVERTINCTION_DATABASE_URL)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "redis address for round history, empty disables it (env: OVERTINCTION_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database index (env: OVERTINCTION_REDIS_DB)")
	fs.StringVar(&cfg.HistQueue, "history-queue", "", "redis list name for round events (env: OVERTINCTION_HISTORY_QUEUE)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error (env: OVERTINCTION_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}
