package catalog

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v2"

	"github.com/lalithsuresh/differential-datalog/ir"
)

// Build constructs a Catalog by reparsing every DDL statement with the
// second SQL dialect (pg_query_go), independent of the first-dialect
// parser compiler uses. CREATE TABLE statements are the authoritative
// source for field order, nullability, and primary key (spec.md §2, §6);
// CREATE VIEW statements contribute no DDL-level column list of their own,
// so their catalog entries are filled in from the already-compiled
// program's output relations instead.
func Build(ddlStatements []string, program ir.Program) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]TableInfo)}

	for _, stmt := range ddlStatements {
		result, err := pg_query.Parse(stmt)
		if err != nil {
			return nil, fmt.Errorf("catalog: second-dialect parse failed: %w", err)
		}
		for _, raw := range result.Stmts {
			if raw.Stmt == nil {
				continue
			}
			switch node := raw.Stmt.Node.(type) {
			case *pg_query.Node_CreateStmt:
				info, name, err := tableInfoFromCreateStmt(node.CreateStmt)
				if err != nil {
					return nil, err
				}
				c.put(name, info)
			case *pg_query.Node_ViewStmt:
				// Column list comes from the compiled view relation below;
				// nothing is read from the second-dialect view statement.
				continue
			default:
				continue
			}
		}
	}

	for _, rel := range program.Relations {
		if rel.Role != ir.RoleOutput {
			continue
		}
		// View relations keep the literal name the user wrote in CREATE
		// VIEW (spec.md §4.2), not the "R"/"T" prefix convention that
		// only applies to relations the compiler names itself.
		tableName := rel.Name
		if _, exists := c.tables[strings.ToUpper(tableName)]; exists {
			continue
		}
		structType, err := structTypeOf(program, rel.RowType)
		if err != nil {
			return nil, fmt.Errorf("catalog: view %s: %w", rel.Name, err)
		}
		info := TableInfo{}
		for _, f := range structType.Fields {
			st, err := scalarTypeOf(f.Type)
			if err != nil {
				return nil, fmt.Errorf("catalog: view %s field %s: %w", rel.Name, f.Name, err)
			}
			info.Fields = append(info.Fields, FieldInfo{Name: strings.ToUpper(f.Name), Type: st})
		}
		c.put(tableName, info)
	}

	return c, nil
}

func (c *Catalog) put(name string, info TableInfo) {
	key := strings.ToUpper(name)
	if _, exists := c.tables[key]; !exists {
		c.order = append(c.order, key)
	}
	c.tables[key] = info
}

func tableInfoFromCreateStmt(cs *pg_query.CreateStmt) (TableInfo, string, error) {
	if cs.Relation == nil {
		return TableInfo{}, "", fmt.Errorf("catalog: CREATE TABLE with no relation name")
	}
	tableName := cs.Relation.Relname

	var info TableInfo
	notNullCols := make(map[string]bool)
	pkCols := make(map[string]bool)
	var tablePK []string

	for _, elt := range cs.TableElts {
		switch e := elt.Node.(type) {
		case *pg_query.Node_ColumnDef:
			col := e.ColumnDef
			st, err := scalarTypeFromTypeName(col.TypeName)
			if err != nil {
				return TableInfo{}, "", fmt.Errorf("catalog: table %s column %s: %w", tableName, col.Colname, err)
			}
			nullable := true
			for _, cons := range col.Constraints {
				cn, ok := cons.Node.(*pg_query.Node_Constraint)
				if !ok {
					continue
				}
				switch cn.Constraint.Contype {
				case pg_query.ConstrType_CONSTR_NOTNULL:
					nullable = false
				case pg_query.ConstrType_CONSTR_PRIMARY:
					nullable = false
					pkCols[strings.ToUpper(col.Colname)] = true
					tablePK = append(tablePK, strings.ToUpper(col.Colname))
				}
			}
			if notNullCols[strings.ToUpper(col.Colname)] {
				nullable = false
			}
			info.Fields = append(info.Fields, FieldInfo{
				Name:     strings.ToUpper(col.Colname),
				Type:     st,
				Nullable: nullable,
			})

		case *pg_query.Node_Constraint:
			cons := e.Constraint
			if cons.Contype == pg_query.ConstrType_CONSTR_PRIMARY {
				for _, k := range cons.Keys {
					if s, ok := k.Node.(*pg_query.Node_String_); ok {
						name := strings.ToUpper(s.String_.Str)
						pkCols[name] = true
						tablePK = append(tablePK, name)
					}
				}
			}
		}
	}

	if len(tablePK) > 0 {
		info.PrimaryKey = tablePK
		for i, f := range info.Fields {
			if pkCols[f.Name] {
				info.Fields[i].Nullable = false
			}
		}
	}

	return info, tableName, nil
}

// scalarTypeFromTypeName maps a pg_query TypeName's innermost catalog name
// (postgres lowers SQL keyword types like INTEGER to internal names such
// as int4) to the catalog's closed scalar-type set.
func scalarTypeFromTypeName(tn *pg_query.TypeName) (ScalarType, error) {
	if tn == nil || len(tn.Names) == 0 {
		return 0, fmt.Errorf("missing type name")
	}
	last := tn.Names[len(tn.Names)-1]
	s, ok := last.Node.(*pg_query.Node_String_)
	if !ok {
		return 0, fmt.Errorf("unsupported type name node %T", last.Node)
	}
	switch s.String_.Str {
	case "bool":
		return Bool, nil
	case "int4":
		return Integer, nil
	case "int8":
		return BigInt, nil
	case "varchar", "bpchar", "text":
		return Varchar, nil
	default:
		return 0, fmt.Errorf("unsupported column type %q", s.String_.Str)
	}
}

func structTypeOf(program ir.Program, t ir.Type) (ir.StructType, error) {
	named, ok := t.(ir.NamedType)
	if !ok {
		return ir.StructType{}, fmt.Errorf("relation row type is not a named struct type")
	}
	td := program.FindTypeDef(named.Name)
	if td == nil {
		return ir.StructType{}, fmt.Errorf("unknown type def %s", named.Name)
	}
	return td.Struct, nil
}

func scalarTypeOf(t ir.Type) (ScalarType, error) {
	switch t.(type) {
	case ir.BoolType:
		return Bool, nil
	case ir.SignedType:
		return Integer, nil
	case ir.ArbitraryIntType:
		return BigInt, nil
	case ir.StringType:
		return Varchar, nil
	default:
		return 0, fmt.Errorf("type %s has no catalog scalar equivalent", t.String())
	}
}
