package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"firereduce/internal/fires"
)

// outputColumnTypes declares the SQLite type of each fires.OutputColumns entry.
var outputColumnTypes = map[string]string{
	fires.ColState:          "TEXT",
	fires.ColFireSizeClass:  "TEXT",
	fires.ColDiscoveryMonth: "INTEGER",
	fires.ColDiscoveryYear:  "INTEGER",
	fires.ColGeneralCause:   "TEXT",
	fires.ColCount:          "INTEGER",
}

// Destination is a writable handle on the destination database.
type Destination struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenDestination opens or creates the database at path.
func OpenDestination(ctx context.Context, driver, path string, logger *zap.Logger) (*Destination, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(driver, readWriteDSN(path))
	if err != nil {
		return nil, &fires.DestinationWriteError{Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &fires.DestinationWriteError{Path: path, Err: fmt.Errorf("failed to connect: %w", err)}
	}
	// One connection keeps the transaction and its statements on the same file handle.
	db.SetMaxOpenConns(1)

	logger.Debug("opened destination", zap.String("path", path), zap.String("driver", driver))
	return &Destination{db: db, path: path, logger: logger}, nil
}

// WriteTable replaces table with groups. Other tables are left untouched.
// The replacement runs in one transaction.
func (d *Destination) WriteTable(ctx context.Context, table string, groups []fires.Group) error {
	wrap := func(err error) error {
		return &fires.DestinationWriteError{Path: d.path, Table: table, Err: err}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return wrap(fmt.Errorf("failed to drop existing table: %w", err))
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return wrap(fmt.Errorf("failed to create table: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table))
	if err != nil {
		return wrap(fmt.Errorf("failed to prepare insert: %w", err))
	}
	defer stmt.Close()

	for i, g := range groups {
		args := append(g.Values(), g.Count)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return wrap(fmt.Errorf("failed to insert row %d: %w", i+1, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(fmt.Errorf("failed to commit: %w", err))
	}

	d.logger.Debug("wrote table", zap.String("table", table), zap.Int("rows", len(groups)))
	return nil
}

// Close releases the database handle.
func (d *Destination) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func createTableSQL(table string) string {
	defs := make([]string, len(fires.OutputColumns))
	for i, c := range fires.OutputColumns {
		defs[i] = quoteIdent(c) + " " + outputColumnTypes[c]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(table string) string {
	cols := make([]string, len(fires.OutputColumns))
	marks := make([]string, len(fires.OutputColumns))
	for i, c := range fires.OutputColumns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}
