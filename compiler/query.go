package compiler

import (
	"strings"

	"github.com/ha1tch/tsqlparser/ast"
	"github.com/lalithsuresh/differential-datalog/ir"
)

// translateQuery compiles a query body to a RelationRHS, per spec.md §4.3.
// Only "SELECT DISTINCT <items> FROM <src> [WHERE <expr>]" is accepted.
func translateQuery(c *Context, sel *ast.SelectStatement) (*RelationRHS, error) {
	if err := rejectUnsupportedShapes(sel); err != nil {
		return nil, err
	}

	if sel.From == nil || len(sel.From.Tables) == 0 {
		return nil, ir.NewTranslationError(ir.ErrKindUnsupported, sel, "SELECT without FROM is not supported")
	}
	if len(sel.From.Tables) != 1 {
		return nil, ir.NewTranslationError(ir.ErrKindUnsupported, sel, "joins are not supported, expected a single FROM source")
	}

	rhs, err := translateFromSource(c, sel.From.Tables[0])
	if err != nil {
		return nil, err
	}

	if sel.Where != nil {
		cond, err := translateScalarExpr(c, sel.Where)
		if err != nil {
			return nil, err
		}
		rhs = rhs.Append(ir.ConditionFragment{Expr: cond})
	}

	return translateProjection(c, sel.Columns, rhs)
}

// rejectUnsupportedShapes enforces the Non-goals this core doesn't
// translate: LIMIT, ORDER BY, WITH, non-DISTINCT SELECT.
func rejectUnsupportedShapes(sel *ast.SelectStatement) error {
	if !sel.Distinct {
		return ir.NewTranslationError(ir.ErrKindUnsupported, sel, "only SELECT DISTINCT is supported")
	}
	if sel.Limit != nil {
		return ir.NewTranslationError(ir.ErrKindUnsupported, sel, "LIMIT is not supported")
	}
	if sel.OrderBy != nil {
		return ir.NewTranslationError(ir.ErrKindUnsupported, sel, "ORDER BY is not supported")
	}
	if sel.With != nil {
		return ir.NewTranslationError(ir.ErrKindUnsupported, sel, "WITH is not supported")
	}
	return nil
}

// translateFromSource handles the two supported FROM shapes: a named
// table, or a parenthesized subquery.
func translateFromSource(c *Context, src ast.TableReference) (*RelationRHS, error) {
	switch t := src.(type) {
	case *ast.TableName:
		tableName := lastIdentifierPart(t.Name.String())
		relName := canonicalRelationName(tableName)
		rel, err := c.LookupRelation(relName)
		if err != nil {
			return nil, ir.NewTranslationError(ir.ErrKindUnknownSchemaObject, t, "unknown table %q", tableName)
		}
		structType, err := c.StructTypeOf(rel.RowType)
		if err != nil {
			return nil, err
		}
		v := ir.VarRef{Name: c.FreshLocalName("v"), VarType: rel.RowType}
		c.EnterScope(v, structType)
		return newRelationRHS(v, rel.RowType, []ir.BodyFragment{
			ir.LiteralFragment{Atom: ir.Atom{Relation: relName, Row: v}},
		}), nil

	case *ast.DerivedTable:
		inner, err := translateQuery(c, t.Query)
		if err != nil {
			return nil, err
		}

		tmpName := c.FreshGlobalName("tmp")
		innerStruct, err := c.StructTypeOf(inner.RowType)
		if err != nil {
			return nil, err
		}
		if err := c.AddTypeDef(ir.TypeDef{Name: "T" + tmpName, Struct: innerStruct}); err != nil {
			return nil, err
		}
		if err := c.AddRelation(ir.Relation{
			Name:    tmpName,
			Role:    ir.RoleInternal,
			RowType: ir.NamedType{Name: "T" + tmpName},
		}); err != nil {
			return nil, err
		}

		v := ir.VarDecl{Name: c.FreshLocalName("v"), VarType: inner.RowType}
		bound := inner.Append(ir.ConditionFragment{
			Expr: ir.Assign{Target: v, Value: inner.Use()},
		})
		c.AddRule(ir.Rule{
			Head: ir.Atom{Relation: tmpName, Row: v.Ref()},
			Body: bound.Body,
		})

		outer := ir.VarRef{Name: c.FreshLocalName("v"), VarType: inner.RowType}
		c.EnterScope(outer, innerStruct)
		return newRelationRHS(outer, inner.RowType, []ir.BodyFragment{
			ir.LiteralFragment{Atom: ir.Atom{Relation: tmpName, Row: outer}},
		}), nil

	default:
		return nil, ir.NewTranslationError(ir.ErrKindUnsupported, src, "unsupported FROM source %T", src)
	}
}

// isStarColumn reports whether col is the bare "*" select item.
func isStarColumn(col *ast.SelectColumn) bool {
	return col.Expression != nil && col.Alias == nil && col.Expression.String() == "*"
}

// translateProjection implements the SELECT projection rules of spec.md
// §4.3: pure "SELECT *" passes the RHS through unchanged; an itemized
// select allocates a fresh struct type, internal relation, and
// struct-constructor binding; a star mixed with other items is an error.
func translateProjection(c *Context, cols []*ast.SelectColumn, rhs *RelationRHS) (*RelationRHS, error) {
	if len(cols) == 0 {
		return nil, ir.NewTranslationError(ir.ErrKindUnsupported, nil, "SELECT with no columns")
	}

	hasStar := false
	for _, col := range cols {
		if isStarColumn(col) {
			hasStar = true
		}
	}
	if hasStar {
		if len(cols) != 1 {
			return nil, ir.NewTranslationError(ir.ErrKindUnsupported, cols, "SELECT * mixed with other items is not supported")
		}
		return rhs, nil
	}

	type projected struct {
		name string
		expr ir.Expr
	}
	var fields []projected
	seen := make(map[string]bool, len(cols))

	for _, col := range cols {
		expr, err := translateScalarExpr(c, col.Expression)
		if err != nil {
			return nil, err
		}

		name := projectionFieldName(c, col)
		if seen[name] {
			return nil, ir.NewTranslationError(ir.ErrKindInvariant, col, "duplicate projected column name %q", name)
		}
		seen[name] = true

		fields = append(fields, projected{name: name, expr: expr})
	}

	structFields := make([]ir.Field, len(fields))
	ctorFields := make([]ir.FieldValue, len(fields))
	for i, f := range fields {
		structFields[i] = ir.Field{Name: f.name, Type: f.expr.Type()}
		ctorFields[i] = ir.FieldValue{Name: f.name, Value: f.expr}
	}

	tmpName := c.FreshGlobalName("tmp")
	typeDefName := "T" + tmpName
	if err := c.AddTypeDef(ir.TypeDef{Name: typeDefName, Struct: ir.StructType{Fields: structFields}}); err != nil {
		return nil, err
	}
	if err := c.AddRelation(ir.Relation{
		Name:    tmpName,
		Role:    ir.RoleInternal,
		RowType: ir.NamedType{Name: typeDefName},
	}); err != nil {
		return nil, err
	}

	rowType := ir.NamedType{Name: typeDefName}
	ctor := ir.StructCtor{TypeName: typeDefName, Fields: ctorFields, CtorType: rowType}
	v := ir.VarDecl{Name: c.FreshLocalName("v"), VarType: rowType}

	bound := rhs.Append(ir.ConditionFragment{Expr: ir.Assign{Target: v, Value: ctor}})
	return newRelationRHS(v.Ref(), rowType, bound.Body), nil
}

// projectionFieldName determines a SelectColumn's result field name, in
// the precedence order of spec.md §4.3: explicit alias, expression-derived
// name for a simple (possibly dotted) identifier, else a fresh col_k.
func projectionFieldName(c *Context, col *ast.SelectColumn) string {
	if col.Alias != nil {
		return strings.ToUpper(col.Alias.Value)
	}
	switch e := col.Expression.(type) {
	case *ast.Identifier:
		return strings.ToUpper(e.Value)
	case *ast.QualifiedIdentifier:
		if len(e.Parts) > 0 {
			return strings.ToUpper(e.Parts[len(e.Parts)-1].Value)
		}
	}
	return strings.ToUpper(c.FreshLocalName("col"))
}
