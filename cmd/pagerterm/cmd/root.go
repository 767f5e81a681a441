package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagerterm/pagerterm/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pagerterm",
	Short: "Pocket terminal client with auto-reconnecting SSH sessions",
	Long: `pagerterm is a terminal client modeled on a pocket LoRa pager:
one session at a time, a bounded output buffer that sheds the newest
bytes under overflow, and a connectivity policy that walks wifi
credentials and endpoints with exponential backoff until something
sticks.

Run it without arguments to open the interactive client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnect(cmd, args)
	},
}

// Execute runs the CLI. Errors are printed here so main stays tiny.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit logs as JSON")
	rootCmd.PersistentFlags().String("config", "", "path to config file (default ~/.config/pagerterm/config.yaml)")
}

// newLogger builds the process logger from the persistent flags, the way
// every subcommand expects it.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// configPath resolves the --config override or the default location.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.Path()
}

// loadConfig reads the effective configuration for a subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path := configPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}
