// Package cli defines the prbot command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/prbot/internal/config"
	"github.com/codex-k8s/prbot/internal/env"
	"github.com/codex-k8s/prbot/internal/githubapi"
	"github.com/codex-k8s/prbot/internal/logging"
)

const (
	// defaultConfigPath is the default location of the prbot settings file.
	defaultConfigPath = ".github/prbot.yaml"
)

// ErrValidationFailed is returned after outputs are written when the pull
// request description has blocking issues.
var ErrValidationFailed = errors.New("pull request description failed validation")

// Options stores global CLI options and the settings resolved from them.
type Options struct {
	ConfigPath string
	EnvFiles   []string
	LogLevel   logging.Level

	vars     env.Vars
	settings settingsEnv
	config   config.Config

	client *githubapi.Client
	event  *githubapi.PullRequestEvent
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(ctx)
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "prbot",
		Short:         "prbot validates pull requests and keeps one bot comment up to date",
		Long:          "prbot runs in GitHub Actions pull request workflows. It checks the pull request description for a summary, a test plan and a changelog line, and reconciles a single marked comment with whatever the workflow has to report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.resolve(cmd); err != nil {
				return err
			}
			logger = logging.NewLogger(cmd.ErrOrStderr(), opts.LogLevel)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			logger.Debug("settings resolved",
				"level", opts.LogLevel,
				"config", opts.ConfigPath,
				"env_files", opts.EnvFiles,
			)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "Path to the prbot settings file")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "Load variables from a .env file (repeatable, process environment wins)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newCommentCommand(opts),
		newValidateCommand(opts),
		newCheckCommand(opts),
	)

	return cmd
}

// resolve merges flags, .env files, the process environment and the settings
// file. Flags win only when set explicitly.
func (o *Options) resolve(cmd *cobra.Command) error {
	flags := cmd.Flags()

	boot, err := parseSettings(env.FromOS())
	if err != nil {
		return err
	}
	if !flags.Changed("env-file") && len(boot.EnvFiles) > 0 {
		o.EnvFiles = boot.EnvFiles
	}

	vars, err := env.Resolve(".", o.EnvFiles)
	if err != nil {
		return err
	}
	settings, err := parseSettings(vars)
	if err != nil {
		return err
	}

	explicitConfig := flags.Changed("config")
	if !explicitConfig && vars.Present("PRBOT_CONFIG") {
		o.ConfigPath = settings.ConfigPath
		explicitConfig = true
	}
	cfg, err := config.Load(o.ConfigPath, !explicitConfig)
	if err != nil {
		return err
	}

	if len(cfg.EnvFiles) > 0 {
		cfgVars, err := env.LoadEnvFiles(filepath.Dir(o.ConfigPath), cfg.EnvFiles)
		if err != nil {
			return fmt.Errorf("config %s: %w", o.ConfigPath, err)
		}
		vars = env.Merge(cfgVars, vars)
		if settings, err = parseSettings(vars); err != nil {
			return err
		}
	}

	level := cmd.Flag("log-level").Value.String()
	if !flags.Changed("log-level") && vars.Present("PRBOT_LOG_LEVEL") {
		level = settings.LogLevel
	}
	o.LogLevel = logging.ParseLevel(level)

	o.vars = vars
	o.settings = settings
	o.config = cfg
	return nil
}
