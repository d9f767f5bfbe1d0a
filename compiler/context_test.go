package compiler

import (
	"errors"
	"testing"

	"github.com/lalithsuresh/differential-datalog/ir"
)

func TestFreshGlobalNameNeverResets(t *testing.T) {
	c := NewContext(DefaultOptions())
	a := c.FreshGlobalName("tmp")
	c.BeginQuery() // must not affect the global counter
	b := c.FreshGlobalName("tmp")
	if a == b {
		t.Fatalf("FreshGlobalName returned %q twice", a)
	}
	if a != "tmp1" || b != "tmp2" {
		t.Errorf("got (%q, %q), want (tmp1, tmp2)", a, b)
	}
}

func TestFreshLocalNameResetsPerQuery(t *testing.T) {
	c := NewContext(DefaultOptions())
	c.BeginQuery()
	if got := c.FreshLocalName("v"); got != "v1" {
		t.Fatalf("FreshLocalName(v) = %q, want v1", got)
	}
	c.BeginQuery()
	if got := c.FreshLocalName("v"); got != "v1" {
		t.Errorf("FreshLocalName(v) after BeginQuery = %q, want v1 again", got)
	}
}

func TestFreshLocalNameColPrefixHasItsOwnCounter(t *testing.T) {
	c := NewContext(DefaultOptions())
	c.BeginQuery()
	c.FreshLocalName("v")
	if got := c.FreshLocalName("col"); got != "col1" {
		t.Errorf("FreshLocalName(col) = %q, want col1 (independent of the v counter)", got)
	}
}

func TestAddTypeDefRejectsDuplicate(t *testing.T) {
	c := NewContext(DefaultOptions())
	td := ir.TypeDef{Name: "Thosts", Struct: ir.StructType{}}
	if err := c.AddTypeDef(td); err != nil {
		t.Fatalf("AddTypeDef: %v", err)
	}
	err := c.AddTypeDef(td)
	if err == nil {
		t.Fatalf("AddTypeDef should reject a duplicate name")
	}
	if !errors.Is(err, ir.ErrInvariant) {
		t.Errorf("AddTypeDef duplicate error = %v, want wrapping ir.ErrInvariant", err)
	}
}

func TestAddRelationRequiresRegisteredTypeDef(t *testing.T) {
	c := NewContext(DefaultOptions())
	rel := ir.Relation{Name: "Rhosts", Role: ir.RoleInput, RowType: ir.NamedType{Name: "Thosts"}}
	if err := c.AddRelation(rel); err == nil {
		t.Fatalf("AddRelation should fail when Thosts has no type-def yet")
	}

	if err := c.AddTypeDef(ir.TypeDef{Name: "Thosts", Struct: ir.StructType{}}); err != nil {
		t.Fatalf("AddTypeDef: %v", err)
	}
	if err := c.AddRelation(rel); err != nil {
		t.Fatalf("AddRelation: %v", err)
	}

	found, err := c.LookupRelation("Rhosts")
	if err != nil || found.Role != ir.RoleInput {
		t.Fatalf("LookupRelation(Rhosts) = (%v, %v), want Role=Input", found, err)
	}
}

func TestAddRelationRejectsNonNamedRowType(t *testing.T) {
	c := NewContext(DefaultOptions())
	rel := ir.Relation{Name: "Rhosts", Role: ir.RoleInput, RowType: ir.StructType{}}
	if err := c.AddRelation(rel); err == nil {
		t.Fatalf("AddRelation should require a NamedType row type")
	}
}

func TestLookupRelationUnknownIsSchemaError(t *testing.T) {
	c := NewContext(DefaultOptions())
	_, err := c.LookupRelation("Rmissing")
	if !errors.Is(err, ir.ErrUnknownSchemaObject) {
		t.Errorf("LookupRelation(missing) error = %v, want wrapping ErrUnknownSchemaObject", err)
	}
}

func TestResolveColumnFindsInnermostScope(t *testing.T) {
	c := NewContext(DefaultOptions())
	hostsType := ir.StructType{Fields: []ir.Field{{Name: "ID", Type: ir.SignedType{Width: 64}}}}
	v1 := ir.VarRef{Name: "v1", VarType: ir.NamedType{Name: "Thosts"}}

	c.EnterScope(v1, hostsType)
	defer c.ExitScope()

	expr, err := c.ResolveColumn(nil, "ID")
	if err != nil {
		t.Fatalf("ResolveColumn(ID): %v", err)
	}
	fa, ok := expr.(ir.FieldAccess)
	if !ok || fa.Field != "ID" {
		t.Fatalf("ResolveColumn(ID) = %#v, want a FieldAccess on ID", expr)
	}
}

func TestResolveColumnUnknownFails(t *testing.T) {
	c := NewContext(DefaultOptions())
	if _, err := c.ResolveColumn(nil, "MISSING"); !errors.Is(err, ir.ErrUnknownSchemaObject) {
		t.Errorf("ResolveColumn(MISSING) error = %v, want wrapping ErrUnknownSchemaObject", err)
	}
}

func TestStructTypeOfResolvesNamedType(t *testing.T) {
	c := NewContext(DefaultOptions())
	st := ir.StructType{Fields: []ir.Field{{Name: "ID", Type: ir.SignedType{Width: 64}}}}
	if err := c.AddTypeDef(ir.TypeDef{Name: "Thosts", Struct: st}); err != nil {
		t.Fatalf("AddTypeDef: %v", err)
	}
	got, err := c.StructTypeOf(ir.NamedType{Name: "Thosts"})
	if err != nil {
		t.Fatalf("StructTypeOf: %v", err)
	}
	if len(got.Fields) != 1 || got.Fields[0].Name != "ID" {
		t.Errorf("StructTypeOf = %v, want the Thosts struct", got)
	}
}
