package compiler

import (
	"strings"

	"github.com/ha1tch/tsqlparser/ast"
	"github.com/lalithsuresh/differential-datalog/ir"
)

// mapColumnType lowers a DDL column type to its IR scalar type, per the
// table in spec.md §4.2. This mirrors the teacher's mapDataType
// (transpiler/types.go) but produces ir.Type instead of a Go type string,
// and narrows the supported set to the four scalars this core handles.
func mapColumnType(dt *ast.DataType, strict bool) (ir.Type, error) {
	if dt == nil {
		return nil, ir.NewTranslationError(ir.ErrKindTypeMismatch, dt, "missing column type")
	}

	switch strings.ToUpper(dt.Name) {
	case "BOOLEAN", "BOOL", "BIT":
		return ir.BoolType{}, nil
	case "INTEGER", "INT":
		return ir.SignedType{Width: 64}, nil
	case "BIGINT":
		return ir.ArbitraryIntType{}, nil
	case "VARCHAR", "CHAR", "TEXT":
		return ir.StringType{}, nil
	default:
		if strict {
			return nil, ir.NewTranslationError(ir.ErrKindTypeMismatch, dt, "unsupported column type %q", dt.Name)
		}
		return nil, ir.NewTranslationError(ir.ErrKindTypeMismatch, dt,
			"unsupported column type %q (supported: boolean, integer, bigint, varchar)", dt.Name)
	}
}

func canonicalTypeName(tableName string) string     { return ir.CanonicalTypeName(tableName) }
func canonicalRelationName(tableName string) string { return ir.CanonicalRelationName(tableName) }
