package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pagerterm/pagerterm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults and floors are applied.
Secrets are redacted unless --secrets is given.

Examples:
  pagerterm config show
  pagerterm config show --secrets`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the config path, refusing to
overwrite an existing file unless --force is given. An existing file is
backed up with a timestamp before being replaced.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configShowCmd.Flags().Bool("secrets", false, "include wifi and endpoint secrets")
	configInitCmd.Flags().Bool("force", false, "replace an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if showSecrets, _ := cmd.Flags().GetBool("secrets"); !showSecrets {
		redactConfig(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to replace)", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func redactConfig(cfg *config.Config) {
	for i := range cfg.Wifi {
		if cfg.Wifi[i].Secret != "" {
			cfg.Wifi[i].Secret = "[redacted]"
		}
	}
	if cfg.Servers.Local.Secret != "" {
		cfg.Servers.Local.Secret = "[redacted]"
	}
	if cfg.Servers.Remote.Secret != "" {
		cfg.Servers.Remote.Secret = "[redacted]"
	}
}
