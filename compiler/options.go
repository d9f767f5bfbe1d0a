// Package compiler translates the first-dialect SQL AST (CREATE TABLE,
// CREATE VIEW … AS SELECT …) into an ir.Program: typed record structs,
// input/internal/output relations, and rules in a row-variable calculus.
package compiler

import (
	"io"
	"log/slog"
)

// Options configures a Context, following the teacher's DMLConfig /
// DefaultDMLConfig struct-of-options pattern.
type Options struct {
	// StrictUnknownType, when true, rejects any DDL column type outside
	// the boolean/integer/bigint/varchar set without listing the
	// supported set in the error message. Default false: the error
	// still fails translation, it just names the supported types.
	StrictUnknownType bool

	// Logger receives Info-level notices for DDL registration and a
	// Warn-level notice before an unsupported column type error is
	// returned. A nil Logger falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns an Options with a discarding logger.
func DefaultOptions() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
