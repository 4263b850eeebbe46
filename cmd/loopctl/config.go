package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/config"
	"github.com/jackzampolin/loopctl/internal/output"
	"github.com/jackzampolin/loopctl/internal/setup"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage loopctl configuration",
	Long: `Manage loopctl configuration.

Settings come from (highest first): flags, LOOPCTL_* environment variables,
the config file, built-in defaults. Nested keys map to environment variables
by upper-casing and replacing dots with underscores, e.g.
review.workteam_arn -> LOOPCTL_REVIEW_WORKTEAM_ARN.

Examples:
  loopctl config init    # Write ~/.loopctl/config.yaml with placeholders
  loopctl config show    # Print the effective configuration
  loopctl config keys    # List every key with its default and description
  loopctl config check   # Report settings still left as placeholders`,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := services(cmd)
		if err := s.Home.EnsureExists(); err != nil {
			return fmt.Errorf("failed to create home directory: %w", err)
		}

		path := s.Home.ConfigPath()
		if cfgFile != "" {
			path = cfgFile
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		abs, _ := filepath.Abs(path)
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", abs)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(services(cmd).Config.Get())
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(config.DefaultEntries())
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every identifier the setup needs is filled in",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := services(cmd).Config.Get()
		keys := append(setup.RequiredKeys(false), setup.PayloadKeys(cfg)...)
		if err := cfg.Require(keys...); err != nil {
			return err
		}
		fmt.Println("Configuration is complete")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)

	rootCmd.AddCommand(configCmd)
}
