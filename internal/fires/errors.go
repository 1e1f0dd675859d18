package fires

import (
	"errors"
	"fmt"
)

// ErrTableNotFound is wrapped by SourceReadError when the source lacks the table.
var ErrTableNotFound = errors.New("table not found")

// SourceReadError reports that the source database could not be read.
// Nothing has been written to the destination when it is returned.
type SourceReadError struct {
	Path  string
	Table string
	Err   error
}

func (e *SourceReadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("read source %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("read %s from %s: %v", e.Table, e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// DestinationWriteError reports that the destination database could not be
// opened or written. The destination's state is undefined afterwards.
type DestinationWriteError struct {
	Path  string
	Table string
	Err   error
}

func (e *DestinationWriteError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("open destination %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("write %s to %s: %v", e.Table, e.Path, e.Err)
}

func (e *DestinationWriteError) Unwrap() error { return e.Err }

// MissingColumnsError lists required columns absent from the source table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns %v", e.Columns)
}
