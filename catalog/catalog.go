// Package catalog builds and serves the metadata catalog: the ordered,
// immutable mapping from user table name to field layout and primary key
// that spec.md §3/§6 require to be authoritative at DML time. It is built
// once, at initialization, by reparsing the DDL list with a second SQL
// dialect independent of the compiler's first-dialect parser.
package catalog

import (
	"fmt"
	"strings"
)

// ScalarType mirrors ir.Type's scalar variants without importing the ir
// package, keeping catalog usable by callers that only need field layout
// (e.g. the client-facing result-set metadata), not the full IR.
type ScalarType int

const (
	Bool ScalarType = iota
	Integer
	BigInt
	Varchar
)

func (t ScalarType) String() string {
	switch t {
	case Bool:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Varchar:
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

// FieldInfo describes one column: its position is implicit in TableInfo's
// Fields slice, which is declaration order.
type FieldInfo struct {
	Name     string
	Type     ScalarType
	Nullable bool
}

// TableInfo is one catalog entry.
type TableInfo struct {
	Fields     []FieldInfo
	PrimaryKey []string // field names, in PRIMARY KEY declaration order
}

// FieldIndex returns the position of name (case-insensitive), or -1.
func (t TableInfo) FieldIndex(name string) int {
	name = strings.ToUpper(name)
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Catalog is the immutable, canonicalized table -> layout mapping.
type Catalog struct {
	tables map[string]TableInfo
	order  []string
}

// ErrUnknownTable is returned by Lookup for a table not in the catalog.
var ErrUnknownTable = fmt.Errorf("unknown table")

// Lookup returns the TableInfo for name, matched case-insensitively.
func (c *Catalog) Lookup(name string) (TableInfo, error) {
	t, ok := c.tables[strings.ToUpper(name)]
	if !ok {
		return TableInfo{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// Tables returns every catalog table name, in registration order.
func (c *Catalog) Tables() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
