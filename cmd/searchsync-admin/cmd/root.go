// Package cmd provides the commands of the searchsync-admin CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/app"
	"github.com/kailas-cloud/searchsync/internal/config"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates the root command for the searchsync-admin CLI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "searchsync-admin",
		Short: "Administer searchsync prefix-search indexes",
		Long: `searchsync-admin inspects registered record types, rebuilds their
search indexes from the record store and runs prefix queries.

Configuration is read from --config, or from config/$ENV.yaml when unset.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("searchsync-admin version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newTypesCmd(flags))
	cmd.AddCommand(newRebuildCmd(flags))
	cmd.AddCommand(newCompleteCmd(flags))

	return cmd
}

func (f *globalFlags) loadConfig() (config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load(config.GetEnv())
}

func (f *globalFlags) newLogger(cfg config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	return logpkg.NewLogger(config.GetEnv(), level)
}

// withApp loads config, connects the stores and runs fn with the wired app.
func (f *globalFlags) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := f.loadConfig()
	if err != nil {
		return err
	}
	logger, err := f.newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
