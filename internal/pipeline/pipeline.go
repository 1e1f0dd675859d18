// Package pipeline runs one reduction end to end:
// connect, read, transform, aggregate, write, close.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"firereduce/internal/config"
	"firereduce/internal/dates"
	"firereduce/internal/fires"
	"firereduce/internal/frame"
	"firereduce/internal/logging"
	"firereduce/internal/reducer"
	"firereduce/internal/report"
	"firereduce/internal/store"
)

// Options configures a run.
type Options struct {
	SourcePath      string
	DestinationPath string

	// Config defaults to config.DefaultConfig().
	Config *config.Config
	Logger *zap.Logger

	// Report receives the diagnostics; nil disables them.
	Report io.Writer
}

// Summary describes a finished run.
type Summary struct {
	RowsBefore       int
	RowsAfter        int
	UnparseableDates int
	SourceColumns    []string
	Duration         time.Duration
}

// Run performs the reduction. A failure while reading is a
// *fires.SourceReadError and leaves the destination untouched; a failure
// while writing is a *fires.DestinationWriteError.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	storeLog := logging.For(logger, logging.CategoryStore)

	tbl, err := load(ctx, cfg.Source, opts.SourcePath, storeLog)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded source",
		zap.String("path", opts.SourcePath),
		zap.String("table", cfg.Source.Table),
		zap.Int("rows", tbl.Len()),
		zap.Int("columns", len(tbl.Columns)))

	r := reducer.New(dates.NewParser(cfg.Dates.Layouts...), logging.For(logger, logging.CategoryReduce))
	res, err := r.Reduce(tbl)
	if err != nil {
		var mc *fires.MissingColumnsError
		if errors.As(err, &mc) {
			return nil, &fires.SourceReadError{Path: opts.SourcePath, Table: cfg.Source.Table, Err: err}
		}
		return nil, fmt.Errorf("failed to reduce: %w", err)
	}

	if opts.Report != nil {
		if err := report.Write(opts.Report, tbl, res, report.Options{TopN: cfg.Report.TopN}); err != nil {
			// The report is diagnostic only.
			logging.For(logger, logging.CategoryReport).Warn("failed to write report", zap.Error(err))
		}
	}

	if err := write(ctx, cfg.Destination, opts.DestinationPath, res.Groups, storeLog); err != nil {
		return nil, err
	}

	sum := &Summary{
		RowsBefore:       res.RowsBefore(),
		RowsAfter:        res.RowsAfter(),
		UnparseableDates: res.DiscoveryDate.Unparseable,
		SourceColumns:    tbl.Columns,
		Duration:         time.Since(start),
	}
	logger.Info("wrote destination",
		zap.String("path", opts.DestinationPath),
		zap.String("table", cfg.Destination.Table),
		zap.Int("rows_before", sum.RowsBefore),
		zap.Int("rows_after", sum.RowsAfter),
		zap.Duration("elapsed", sum.Duration))
	return sum, nil
}

// load reads the source table and closes the source before returning,
// so the source is never open while the destination is.
func load(ctx context.Context, db config.DatabaseConfig, path string, logger *zap.Logger) (*frame.Table, error) {
	src, err := store.OpenSource(ctx, db.Driver, path, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return src.LoadTable(ctx, db.Table)
}

func write(ctx context.Context, db config.DatabaseConfig, path string, groups []fires.Group, logger *zap.Logger) error {
	dst, err := store.OpenDestination(ctx, db.Driver, path, logger)
	if err != nil {
		return err
	}

	if err := dst.WriteTable(ctx, db.Table, groups); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return &fires.DestinationWriteError{Path: path, Table: db.Table, Err: fmt.Errorf("failed to close: %w", err)}
	}
	return nil
}
