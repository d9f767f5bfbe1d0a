package runtime

import "fmt"

// ErrKind classifies a DMLError, mirroring spec.md §7's error-kind table
// for the DML-time half of the system.
type ErrKind int

const (
	ErrKindParse ErrKind = iota
	ErrKindUnsupported
	ErrKindUnknownSchemaObject
	ErrKindArityMismatch
	ErrKindEngine
	ErrKindInvariant
)

// ErrArityMismatch, ErrFatalRollback, and ErrUnexpectedChangeKind are the
// sentinels DMLError wraps; callers match with errors.Is.
var (
	ErrArityMismatch        = fmt.Errorf("runtime: arity or shape mismatch")
	ErrFatalRollback        = fmt.Errorf("runtime: rollback itself failed")
	ErrUnexpectedChangeKind = fmt.Errorf("runtime: unexpected change kind in post-commit stream")
)

// DMLError is the exported error type for every failure the dispatcher
// produces, carrying the offending statement text for diagnostics.
type DMLError struct {
	Kind ErrKind
	SQL  string
	Msg  string
	Err  error
}

func (e *DMLError) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("runtime: %s (statement: %s)", e.Msg, e.SQL)
	}
	return "runtime: " + e.Msg
}

func (e *DMLError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Kind {
	case ErrKindArityMismatch:
		return ErrArityMismatch
	default:
		return nil
	}
}

func newDMLError(kind ErrKind, sql, format string, args ...any) error {
	return &DMLError{Kind: kind, SQL: sql, Msg: fmt.Sprintf(format, args...)}
}

func wrapDMLError(kind ErrKind, sql string, err error) error {
	return &DMLError{Kind: kind, SQL: sql, Msg: err.Error(), Err: err}
}
