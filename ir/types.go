// Package ir defines the relational intermediate representation that the
// compiler emits: scalar and struct types, type-defs, relations, rules, and
// the expression forms used inside a rule body.
package ir

import "fmt"

// Type is the closed variant of IR scalar/struct types. The only
// implementations are the ones in this file; callers switch on the
// concrete type, never on a string tag.
type Type interface {
	irType()
	String() string
}

// BoolType is the IR boolean scalar.
type BoolType struct{}

func (BoolType) irType()        {}
func (BoolType) String() string { return "Bool" }

// SignedType is a fixed-width signed integer, e.g. Signed(64) for T-SQL
// INTEGER per the DDL lowering table.
type SignedType struct {
	Width int
}

func (SignedType) irType()          {}
func (s SignedType) String() string { return fmt.Sprintf("Signed(%d)", s.Width) }

// ArbitraryIntType is an unbounded two's-complement integer, backed at
// runtime by math/big.Int.
type ArbitraryIntType struct{}

func (ArbitraryIntType) irType()        {}
func (ArbitraryIntType) String() string { return "ArbitraryInt" }

// StringType is the IR string scalar.
type StringType struct{}

func (StringType) irType()        {}
func (StringType) String() string { return "String" }

// NamedType references a previously-registered TypeDef by name. Relations
// must resolve their row type to a NamedType whose Name has a TypeDef.
type NamedType struct {
	Name string
}

func (NamedType) irType()          {}
func (n NamedType) String() string { return n.Name }

// Field is a (name, type) pair inside a StructType.
type Field struct {
	Name string
	Type Type
}

// StructType is an ordered list of fields. Field declaration order is the
// canonical tuple order the engine codec uses; field names must be unique
// within the struct.
type StructType struct {
	Fields []Field
}

func (StructType) irType() {}

func (s StructType) String() string {
	out := "{"
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Type.String()
	}
	return out + "}"
}

// FieldIndex returns the position of name in the struct, or -1.
func (s StructType) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// TypeDef binds a unique type name to a struct type.
type TypeDef struct {
	Name   string
	Struct StructType
}
