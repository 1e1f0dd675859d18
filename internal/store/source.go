package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"firereduce/internal/fires"
	"firereduce/internal/frame"
)

// Source is a read-only handle on the source database.
type Source struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSource opens path read-only with the named driver.
// A missing file is a *fires.SourceReadError; SQLite is never allowed to create it.
func OpenSource(ctx context.Context, driver, path string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &fires.SourceReadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &fires.SourceReadError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	db, err := sql.Open(driver, readOnlyDSN(path))
	if err != nil {
		return nil, &fires.SourceReadError{Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &fires.SourceReadError{Path: path, Err: fmt.Errorf("failed to connect: %w", err)}
	}

	logger.Debug("opened source", zap.String("path", path), zap.String("driver", driver))
	return &Source{db: db, path: path, logger: logger}, nil
}

// LoadTable reads every row and column of table into memory.
func (s *Source) LoadTable(ctx context.Context, table string) (*frame.Table, error) {
	wrap := func(err error) error {
		return &fires.SourceReadError{Path: s.path, Table: table, Err: err}
	}

	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, wrap(err)
	}
	if !exists {
		return nil, wrap(fires.ErrTableNotFound)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, wrap(fmt.Errorf("failed to query: %w", err))
	}
	defer rows.Close()

	t, err := frame.FromRows(rows)
	if err != nil {
		return nil, wrap(err)
	}

	s.logger.Debug("loaded table",
		zap.String("table", table),
		zap.Int("rows", t.Len()),
		zap.Strings("columns", t.Columns))
	return t, nil
}

// tableExists matches names case-insensitively, as SQLite resolves them.
func (s *Source) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ? COLLATE NOCASE", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *Source) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
