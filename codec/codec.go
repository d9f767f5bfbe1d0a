// Package codec converts between catalog-typed Go values and the
// engine's wire Record variant (spec.md §4.6), including the
// "ddlog_std::Some"/"ddlog_std::None" nullable wrapper convention.
package codec

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lalithsuresh/differential-datalog/catalog"
	"github.com/lalithsuresh/differential-datalog/engine"
)

// Encode converts a Go value (bool, int64, *big.Int, or string, matching
// v) into an engine.Record, wrapping it in a Some/None tag when nullable
// is true.
func Encode(v catalog.ScalarType, value any, nullable bool) (engine.Record, error) {
	if nullable && value == nil {
		return engine.WrapNone(), nil
	}
	rec, err := encodeScalar(v, value)
	if err != nil {
		return nil, err
	}
	if nullable {
		return engine.WrapSome(rec), nil
	}
	return rec, nil
}

func encodeScalar(v catalog.ScalarType, value any) (engine.Record, error) {
	switch v {
	case catalog.Bool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("codec: expected bool, got %T", value)
		}
		return engine.BoolRecord(b), nil

	case catalog.Integer:
		switch n := value.(type) {
		case int64:
			return engine.SignedRecord(n), nil
		case int32:
			return engine.SignedRecord(n), nil
		case int:
			return engine.SignedRecord(n), nil
		default:
			return nil, fmt.Errorf("codec: expected integer, got %T", value)
		}

	case catalog.BigInt:
		switch n := value.(type) {
		case *big.Int:
			return engine.BigIntRecord{Value: n}, nil
		case int64:
			return engine.BigIntRecord{Value: big.NewInt(n)}, nil
		default:
			return nil, fmt.Errorf("codec: expected *big.Int or int64, got %T", value)
		}

	case catalog.Varchar:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("codec: expected string, got %T", value)
		}
		return engine.StringRecord(s), nil

	default:
		return nil, fmt.Errorf("codec: unsupported scalar type %s", v)
	}
}

// Decode is Encode's inverse: it unwraps a Some/None tag when nullable is
// true (returning nil for None), then converts the underlying Record back
// to the Go value matching v. nullable is a property of the catalog column
// Decode is called for, not of rec itself: a field the catalog marks
// NOT NULL is never wrapped, so Decode is never asked to unwrap one, and a
// bare top-level record always decodes as the plain value in that case.
func Decode(v catalog.ScalarType, rec engine.Record, nullable bool) (any, error) {
	if nullable {
		sr, ok := rec.(engine.StructRecord)
		if !ok {
			return nil, fmt.Errorf("codec: expected Some/None wrapper, got %T", rec)
		}
		switch sr.Tag {
		case engine.NoneTag:
			return nil, nil
		case engine.SomeTag:
			if len(sr.Fields) != 1 {
				return nil, fmt.Errorf("codec: Some wrapper must carry exactly one field, got %d", len(sr.Fields))
			}
			rec = sr.Fields[0]
		default:
			return nil, fmt.Errorf("codec: unrecognized wrapper tag %q", sr.Tag)
		}
	}
	return decodeScalar(v, rec)
}

func decodeScalar(v catalog.ScalarType, rec engine.Record) (any, error) {
	switch v {
	case catalog.Bool:
		b, ok := rec.(engine.BoolRecord)
		if !ok {
			return nil, fmt.Errorf("codec: expected BoolRecord, got %T", rec)
		}
		return bool(b), nil

	case catalog.Integer:
		n, ok := rec.(engine.SignedRecord)
		if !ok {
			return nil, fmt.Errorf("codec: expected SignedRecord, got %T", rec)
		}
		return int64(n), nil

	case catalog.BigInt:
		n, ok := rec.(engine.BigIntRecord)
		if !ok {
			return nil, fmt.Errorf("codec: expected BigIntRecord, got %T", rec)
		}
		return n.Value, nil

	case catalog.Varchar:
		s, ok := rec.(engine.StringRecord)
		if !ok {
			return nil, fmt.Errorf("codec: expected StringRecord, got %T", rec)
		}
		return string(s), nil

	default:
		return nil, fmt.Errorf("codec: unsupported scalar type %s", v)
	}
}

// ParseLiteral parses a DML literal token (as produced by the second
// dialect parser) into an engine.Record of the column's scalar type.
// Numeric tokens are first parsed as decimal.Decimal so narrowing to a
// fixed-width Signed or widening to ArbitraryInt is a checked conversion,
// never a silent truncation (spec.md §9 Design Note).
func ParseLiteral(tok string, v catalog.ScalarType) (engine.Record, error) {
	switch v {
	case catalog.Bool:
		switch tok {
		case "true", "TRUE", "t":
			return engine.BoolRecord(true), nil
		case "false", "FALSE", "f":
			return engine.BoolRecord(false), nil
		default:
			return nil, fmt.Errorf("codec: %q is not a boolean literal", tok)
		}

	case catalog.Integer:
		d, err := decimal.NewFromString(tok)
		if err != nil {
			return nil, fmt.Errorf("codec: %q is not a numeric literal: %w", tok, err)
		}
		if !d.IsInteger() {
			return nil, fmt.Errorf("codec: %q has a fractional part, cannot narrow to INTEGER", tok)
		}
		big64 := d.BigInt()
		if !big64.IsInt64() {
			return nil, fmt.Errorf("codec: %q overflows a 64-bit INTEGER column", tok)
		}
		return engine.SignedRecord(big64.Int64()), nil

	case catalog.BigInt:
		d, err := decimal.NewFromString(tok)
		if err != nil {
			return nil, fmt.Errorf("codec: %q is not a numeric literal: %w", tok, err)
		}
		if !d.IsInteger() {
			return nil, fmt.Errorf("codec: %q has a fractional part, cannot widen to BIGINT", tok)
		}
		return engine.BigIntRecord{Value: d.BigInt()}, nil

	case catalog.Varchar:
		return engine.StringRecord(unquoteStringLiteral(tok)), nil

	default:
		return nil, fmt.Errorf("codec: unsupported scalar type %s", v)
	}
}

// unquoteStringLiteral strips a single layer of matching single or double
// quotes from a SQL string-literal token; a token without surrounding
// quotes, such as the already-unquoted string the dispatcher takes from
// the parse tree, is returned unchanged.
func unquoteStringLiteral(tok string) string {
	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}
