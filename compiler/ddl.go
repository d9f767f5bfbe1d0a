package compiler

import (
	"strings"

	"github.com/ha1tch/tsqlparser/ast"
	"github.com/lalithsuresh/differential-datalog/ir"
)

// TranslateDDL walks a DDL program statement by statement, emitting
// type-defs, relations, and rules into c. It aborts (and returns) on the
// first translation error, per spec.md §7's "they abort initialization".
func TranslateDDL(c *Context, program *ast.Program) error {
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.CreateTableStatement:
			if err := TranslateCreateTable(c, s); err != nil {
				return err
			}
		case *ast.CreateViewStatement:
			if err := TranslateCreateView(c, s); err != nil {
				return err
			}
		default:
			return ir.NewTranslationError(ir.ErrKindUnsupported, stmt, "unsupported DDL statement %T", stmt)
		}
	}
	return nil
}

// TranslateCreateTable implements spec.md §4.2's CREATE TABLE lowering:
// a struct type-def with fields in declared order, and an Input relation
// of that type.
func TranslateCreateTable(c *Context, s *ast.CreateTableStatement) error {
	tableName := lastIdentifierPart(s.Name.String())

	fields := make([]ir.Field, 0, len(s.Columns))
	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		// Uppercased so field names fold the same way catalog.TableInfo
		// folds them; Result.Columns echoes this casing back to the
		// client rather than the literal casing written in the DDL.
		name := strings.ToUpper(col.Name.Value)
		if seen[name] {
			return ir.NewTranslationError(ir.ErrKindInvariant, col, "duplicate column name %q in table %q", name, tableName)
		}
		seen[name] = true

		t, err := mapColumnType(col.DataType, c.opts.StrictUnknownType)
		if err != nil {
			c.logger().Warn("unsupported column type", "table", tableName, "column", name, "error", err)
			return err
		}
		fields = append(fields, ir.Field{Name: name, Type: t})
	}

	typeDefName := canonicalTypeName(tableName)
	if err := c.AddTypeDef(ir.TypeDef{Name: typeDefName, Struct: ir.StructType{Fields: fields}}); err != nil {
		return err
	}

	relName := canonicalRelationName(tableName)
	if err := c.AddRelation(ir.Relation{
		Name:    relName,
		Role:    ir.RoleInput,
		RowType: ir.NamedType{Name: typeDefName},
	}); err != nil {
		return err
	}

	c.logger().Info("registered input relation", "table", tableName, "relation", relName, "type", typeDefName)
	return nil
}

// TranslateCreateView implements spec.md §4.2's CREATE VIEW lowering:
// compile the query to a RelationRHS, emit an Output relation matching its
// row type, and emit the binding rule that produces it.
func TranslateCreateView(c *Context, s *ast.CreateViewStatement) error {
	viewName := lastIdentifierPart(s.Name.String())

	c.BeginQuery()
	rhs, err := translateQuery(c, s.Query)
	if err != nil {
		return err
	}

	if err := c.AddRelation(ir.Relation{
		Name:    viewName,
		Role:    ir.RoleOutput,
		RowType: rhs.RowType,
	}); err != nil {
		return err
	}

	outVar := ir.VarDecl{Name: c.FreshLocalName("v"), VarType: rhs.RowType}
	bound := rhs.Append(ir.ConditionFragment{
		Expr: ir.Assign{Target: outVar, Value: rhs.Use()},
	})

	c.AddRule(ir.Rule{
		Head: ir.Atom{Relation: viewName, Row: outVar.Ref()},
		Body: bound.Body,
	})

	c.logger().Info("registered output relation", "view", viewName, "type", rhs.RowType)
	return nil
}

// lastIdentifierPart strips a schema/brackets prefix off a dotted or
// bracketed SQL identifier, e.g. "[dbo].[Hosts]" or "dbo.Hosts" -> "Hosts".
func lastIdentifierPart(name string) string {
	name = strings.ReplaceAll(name, "[", "")
	name = strings.ReplaceAll(name, "]", "")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
