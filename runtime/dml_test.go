package runtime

import "testing"

func TestColRefFieldsSimpleName(t *testing.T) {
	node := map[string]any{
		"ColumnRef": map[string]any{
			"fields": []any{
				map[string]any{"String": map[string]any{"str": "id"}},
			},
		},
	}
	names, ok := colRefFields(node)
	if !ok || len(names) != 1 || names[0] != "id" {
		t.Fatalf("colRefFields() = (%v, %v), want ([id], true)", names, ok)
	}
}

func TestColRefFieldsStar(t *testing.T) {
	node := map[string]any{
		"ColumnRef": map[string]any{
			"fields": []any{
				map[string]any{"A_Star": map[string]any{}},
			},
		},
	}
	if !isStarColumnRef(node) {
		t.Fatalf("isStarColumnRef() = false, want true")
	}
}

func TestColRefFieldsNotAColumnRef(t *testing.T) {
	if _, ok := colRefFields(map[string]any{"A_Const": map[string]any{}}); ok {
		t.Fatalf("colRefFields() on a non-ColumnRef node should miss")
	}
}

func TestValueNodeToSpecParamRef(t *testing.T) {
	node := map[string]any{"ParamRef": map[string]any{"number": float64(1)}}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if !spec.hasBinding || spec.bindingIdx != 1 {
		t.Errorf("spec = %+v, want hasBinding=true bindingIdx=1", spec)
	}
}

func TestValueNodeToSpecIntegerConst(t *testing.T) {
	node := map[string]any{
		"A_Const": map[string]any{
			"val": map[string]any{"Integer": map[string]any{"ival": float64(42)}},
		},
	}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if spec.hasBinding || spec.token != "42" {
		t.Errorf("spec = %+v, want token=42", spec)
	}
}

func TestValueNodeToSpecStringConst(t *testing.T) {
	node := map[string]any{
		"A_Const": map[string]any{
			"val": map[string]any{"String": map[string]any{"str": "hello"}},
		},
	}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if spec.token != "hello" {
		t.Errorf("spec.token = %q, want hello", spec.token)
	}
}

func TestValueNodeToSpecFloatConst(t *testing.T) {
	node := map[string]any{
		"A_Const": map[string]any{
			"val": map[string]any{"Float": map[string]any{"str": "1.5"}},
		},
	}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if spec.token != "1.5" {
		t.Errorf("spec.token = %q, want 1.5", spec.token)
	}
}

// Postgres 13's grammar has no boolean literal node: TRUE/FALSE parse as
// a TypeCast of a string constant ('t'/'f') to bool.
func TestValueNodeToSpecBoolConst(t *testing.T) {
	node := map[string]any{
		"TypeCast": map[string]any{
			"arg": map[string]any{
				"A_Const": map[string]any{
					"val": map[string]any{"String": map[string]any{"str": "t"}},
				},
			},
			"typeName": map[string]any{
				"names": []any{
					map[string]any{"String": map[string]any{"str": "bool"}},
				},
			},
		},
	}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if spec.token != "true" {
		t.Errorf("spec.token = %q, want true", spec.token)
	}
}

func TestValueNodeToSpecBoolConstFalse(t *testing.T) {
	node := map[string]any{
		"TypeCast": map[string]any{
			"arg": map[string]any{
				"A_Const": map[string]any{
					"val": map[string]any{"String": map[string]any{"str": "f"}},
				},
			},
			"typeName": map[string]any{
				"names": []any{
					map[string]any{"String": map[string]any{"str": "bool"}},
				},
			},
		},
	}
	spec, err := valueNodeToSpec(node)
	if err != nil {
		t.Fatalf("valueNodeToSpec: %v", err)
	}
	if spec.token != "false" {
		t.Errorf("spec.token = %q, want false", spec.token)
	}
}

func TestValueNodeToSpecUnsupportedShape(t *testing.T) {
	if _, err := valueNodeToSpec(map[string]any{"FuncCall": map[string]any{}}); err == nil {
		t.Fatalf("valueNodeToSpec(FuncCall) should fail, function calls are not a supported value shape")
	}
}

func TestEqualityPredicateColumnOnLeft(t *testing.T) {
	node := map[string]any{
		"A_Expr": map[string]any{
			"kind": "AEXPR_OP",
			"name": []any{map[string]any{"String": map[string]any{"str": "="}}},
			"lexpr": map[string]any{
				"ColumnRef": map[string]any{
					"fields": []any{map[string]any{"String": map[string]any{"str": "id"}}},
				},
			},
			"rexpr": map[string]any{
				"A_Const": map[string]any{
					"val": map[string]any{"Integer": map[string]any{"ival": float64(1)}},
				},
			},
		},
	}
	col, spec, err := equalityPredicate(node)
	if err != nil {
		t.Fatalf("equalityPredicate: %v", err)
	}
	if col != "id" || spec.token != "1" {
		t.Errorf("got (%q, %+v), want (id, token=1)", col, spec)
	}
}

func TestEqualityPredicateColumnOnRight(t *testing.T) {
	node := map[string]any{
		"A_Expr": map[string]any{
			"kind": "AEXPR_OP",
			"name": []any{map[string]any{"String": map[string]any{"str": "="}}},
			"lexpr": map[string]any{
				"A_Const": map[string]any{
					"val": map[string]any{"Integer": map[string]any{"ival": float64(1)}},
				},
			},
			"rexpr": map[string]any{
				"ColumnRef": map[string]any{
					"fields": []any{map[string]any{"String": map[string]any{"str": "id"}}},
				},
			},
		},
	}
	col, spec, err := equalityPredicate(node)
	if err != nil {
		t.Fatalf("equalityPredicate: %v", err)
	}
	if col != "id" || spec.token != "1" {
		t.Errorf("got (%q, %+v), want (id, token=1)", col, spec)
	}
}

func TestEqualityPredicateRejectsNonEqualityOp(t *testing.T) {
	node := map[string]any{
		"A_Expr": map[string]any{
			"kind": "AEXPR_OP",
			"name": []any{map[string]any{"String": map[string]any{"str": "<"}}},
			"lexpr": map[string]any{
				"ColumnRef": map[string]any{
					"fields": []any{map[string]any{"String": map[string]any{"str": "id"}}},
				},
			},
			"rexpr": map[string]any{
				"A_Const": map[string]any{"val": map[string]any{"Integer": map[string]any{"ival": float64(1)}}},
			},
		},
	}
	if _, _, err := equalityPredicate(node); err == nil {
		t.Fatalf("equalityPredicate with < should fail")
	}
}

func TestEqualityPredicateRejectsColumnToColumn(t *testing.T) {
	node := map[string]any{
		"A_Expr": map[string]any{
			"kind": "AEXPR_OP",
			"name": []any{map[string]any{"String": map[string]any{"str": "="}}},
			"lexpr": map[string]any{
				"ColumnRef": map[string]any{
					"fields": []any{map[string]any{"String": map[string]any{"str": "id"}}},
				},
			},
			"rexpr": map[string]any{
				"ColumnRef": map[string]any{
					"fields": []any{map[string]any{"String": map[string]any{"str": "other"}}},
				},
			},
		},
	}
	if _, _, err := equalityPredicate(node); err == nil {
		t.Fatalf("equalityPredicate comparing two columns should fail; DELETE predicates must compare a column to a value")
	}
}
