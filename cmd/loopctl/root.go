package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/config"
	"github.com/jackzampolin/loopctl/internal/home"
	"github.com/jackzampolin/loopctl/internal/output"
	"github.com/jackzampolin/loopctl/internal/svcctx"
	"github.com/jackzampolin/loopctl/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	awsRegion    string
	awsProfile   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "loopctl",
	Short: "Provision human review workflows and wire them into a pipeline",
	Long: `loopctl sets up human review for a document extraction pipeline.

It creates the pieces the managed review service needs and points the
deployed pipeline at them:
  - Render and register a task UI template
  - Create a flow definition bound to a workteam and an output location
  - Send a test task to reviewers and read back their answers
  - Patch the pipeline function's environment with the flow definition ARN

Run 'loopctl config init' first, fill in the <placeholders>, then
'loopctl setup' to run every step in order.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.loopctl/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "loopctl home directory (default: ~/.loopctl)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(&awsRegion, "region", "", "AWS region (overrides aws.region)")
	rootCmd.PersistentFlags().StringVar(&awsProfile, "profile", "", "AWS shared config profile (overrides aws.profile)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Set output format and attach services before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := output.SetFormat(outputFormat); err != nil {
			return err
		}

		// config init may target a file that does not exist yet
		s, err := loadServices(cmd == configInitCmd)
		if err != nil {
			return err
		}
		cmd.SetContext(svcctx.WithServices(cmd.Context(), s))
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// loadServices builds the shared services from flags and config.
// With allowMissing, a --config path that does not exist yet falls back
// to defaults instead of failing.
func loadServices(allowMissing bool) (*svcctx.Services, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	file := cfgFile
	if file == "" && homeDir != "" && h.ConfigExists() {
		file = h.ConfigPath()
	}
	if allowMissing && file != "" {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			file = ""
		}
	}
	mgr, err := config.NewManager(file)
	if err != nil {
		return nil, err
	}
	if awsRegion != "" {
		if err := mgr.Override("aws.region", awsRegion); err != nil {
			return nil, err
		}
	}
	if awsProfile != "" {
		if err := mgr.Override("aws.profile", awsProfile); err != nil {
			return nil, err
		}
	}

	logger := newLogger(verbose)
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("loaded config", "file", f)
	}

	return &svcctx.Services{
		Config: mgr,
		Logger: logger,
		Home:   h,
	}, nil
}

// watchConfig warns when the config file is edited while a long-running
// command is in flight. The command keeps the values it started with.
func watchConfig(s *svcctx.Services) {
	file := s.Config.ConfigFile()
	if file == "" {
		return
	}
	started := s.Config.Get()
	s.Config.OnChange(func(cfg *config.Config) {
		if changed := started.Changed(cfg); len(changed) > 0 {
			s.Logger.Warn("config file changed during run, rerun to apply",
				"file", file, "keys", changed)
		}
	})
	s.Config.WatchConfig()
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// services returns the services attached by PersistentPreRunE.
func services(cmd *cobra.Command) *svcctx.Services {
	s := svcctx.ServicesFrom(cmd.Context())
	if s == nil {
		panic(fmt.Sprintf("command %q ran without services", cmd.CommandPath()))
	}
	return s
}
