package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jbweber/diskforge/internal/config"
	"github.com/jbweber/diskforge/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags and the state PersistentPreRunE builds from them.
var (
	configPath   string
	envFile      string
	verbose      bool
	outputFormat string
	noHeaders    bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "diskforge",
	Short: "Diskforge - VM disk configuration builder",
	Long: `Diskforge builds validated VM disk configurations from declarative
YAML blueprints.

Each disk is placed on the next free index of its adapter family, cloned
from a catalog image or a package, or allocated as raw storage. One device
can be marked bootable. The result is printed as a table, YAML or JSON, or
rendered as libvirt disk XML.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}

		loaded, err := config.Load(configPath, envFiles...)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel()
		if verbose {
			level = zapcore.DebugLevel
		}
		logger, err = newLogger(level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.diskforge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Read DISKFORGE_* settings from this file (default ./.env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(output.FormatTable), "Output format: table, yaml, json")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false, "Omit table headers")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(testConnCmd)
}

// newLogger builds a console logger on stderr so stdout stays parseable.
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = level > zapcore.DebugLevel

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return l, nil
}

// newFormatter creates the formatter selected by the global flags.
func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
	})
}
