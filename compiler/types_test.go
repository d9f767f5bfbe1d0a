package compiler

import (
	"errors"
	"testing"

	"github.com/ha1tch/tsqlparser/ast"
	"github.com/lalithsuresh/differential-datalog/ir"
)

func TestMapColumnTypeKnownScalars(t *testing.T) {
	tests := []struct {
		name string
		want ir.Type
	}{
		{"BOOLEAN", ir.BoolType{}},
		{"BOOL", ir.BoolType{}},
		{"INTEGER", ir.SignedType{Width: 64}},
		{"INT", ir.SignedType{Width: 64}},
		{"BIGINT", ir.ArbitraryIntType{}},
		{"VARCHAR", ir.StringType{}},
		{"TEXT", ir.StringType{}},
	}
	for _, tt := range tests {
		got, err := mapColumnType(&ast.DataType{Name: tt.name}, false)
		if err != nil {
			t.Fatalf("mapColumnType(%s): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("mapColumnType(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMapColumnTypeUnknownNonStrict(t *testing.T) {
	_, err := mapColumnType(&ast.DataType{Name: "DATETIME"}, false)
	if err == nil {
		t.Fatalf("mapColumnType(DATETIME) should fail; only four scalars are supported")
	}
}

func TestMapColumnTypeNilIsTypeMismatch(t *testing.T) {
	_, err := mapColumnType(nil, false)
	if !errors.Is(err, ir.ErrTypeMismatch) {
		t.Fatalf("mapColumnType(nil) error = %v, want wrapping ir.ErrTypeMismatch", err)
	}
}

func TestCanonicalNameHelpers(t *testing.T) {
	if got := canonicalTypeName("hosts"); got != "Thosts" {
		t.Errorf("canonicalTypeName(hosts) = %q, want Thosts", got)
	}
	if got := canonicalRelationName("hosts"); got != "Rhosts" {
		t.Errorf("canonicalRelationName(hosts) = %q, want Rhosts", got)
	}
}
