// Command firereduce coalesces duplicate wildfire records.
//
// Usage:
//
//	firereduce <source.sqlite> <destination.sqlite>
//
// It reads table Fires from the source, projects each row to
// (STATE, FIRE_SIZE_CLASS, DISCOVERY_MONTH, DISCOVERY_YEAR, NWCG_GENERAL_CAUSE),
// keeps only tuples that occur more than once, and writes them with a COUNT
// column to table Fires in the destination, replacing any existing table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"firereduce/internal/config"
	"firereduce/internal/logging"
	"firereduce/internal/pipeline"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger

	// stdout receives the diagnostics report.
	stdout io.Writer = os.Stdout
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "firereduce <source-db> <destination-db>",
	Short: "Coalesce duplicate wildfire records into counts",
	Long: `Reads table Fires from the source SQLite database, projects it to
STATE, FIRE_SIZE_CLASS, DISCOVERY_MONTH, DISCOVERY_YEAR and NWCG_GENERAL_CAUSE,
and writes every combination that occurs more than once, with its COUNT, to
table Fires in the destination database. Combinations seen only once are
dropped. An existing Fires table in the destination is replaced; other tables
are left alone.

Diagnostics (value counts, FIRE_SIZE summary, row counts) are printed to
stdout; logs go to stderr.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		base, err := logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = base.With(zap.String("run_id", uuid.NewString()))

		logging.For(logger, logging.CategoryBoot).Debug("configuration loaded",
			zap.String("config", configPath),
			zap.String("source_driver", cfg.Source.Driver),
			zap.String("destination_driver", cfg.Destination.Driver))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runReduce,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the diagnostics report")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func runReduce(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var report io.Writer
	if cfg.Report.Enabled && !quiet {
		report = stdout
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, err := pipeline.Run(ctx, pipeline.Options{
		SourcePath:      args[0],
		DestinationPath: args[1],
		Config:          cfg,
		Logger:          logger,
		Report:          report,
	})
	if err != nil {
		logger.Error("reduction failed", zap.Error(err))
		// PersistentPostRun does not run after a RunE error.
		_ = logger.Sync()
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "firereduce:", err)
		os.Exit(1)
	}
}
