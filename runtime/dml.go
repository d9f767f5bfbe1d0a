package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v2"
)

// valueSpec is one resolved RHS of a DML value position: either a literal
// token straight off the parse tree, or an index into the statement's
// bindings slice.
type valueSpec struct {
	token       string
	hasBinding  bool
	bindingIdx  int // 1-based, as written in the SQL (ParamRef numbering)
}

// parsedInsert is what dml.go extracts from an INSERT statement before the
// dispatcher resolves catalog types and binding values.
type parsedInsert struct {
	table string
	rows  [][]valueSpec
}

// parsedDelete is what dml.go extracts from a DELETE statement: one
// equality predicate per WHERE conjunct, keyed by the upper-cased column
// name so it compares directly against the catalog's folded names.
type parsedDelete struct {
	table      string
	predicates map[string]valueSpec
}

// singleStatementNode parses sql with the second-dialect grammar and
// returns its single top-level statement as (node-kind, fields). The DML
// dispatcher works off the JSON tree form of the parse result rather than
// the generated protobuf struct API, since the JSON node-kind/field-name
// convention is the part of this parser's surface this module depends on.
func singleStatementNode(sql string) (string, map[string]any, error) {
	raw, err := pg_query.ParseToJSON(sql)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	stmts, _ := tree["stmts"].([]any)
	if len(stmts) != 1 {
		return "", nil, fmt.Errorf("%w: expected exactly one statement, got %d", ErrParseFailed, len(stmts))
	}
	wrapper, _ := stmts[0].(map[string]any)
	stmtNode, ok := wrapper["stmt"].(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: empty statement", ErrParseFailed)
	}
	for kind, body := range stmtNode {
		fields, _ := body.(map[string]any)
		return kind, fields, nil
	}
	return "", nil, fmt.Errorf("%w: empty statement", ErrParseFailed)
}

// ErrParseFailed is wrapped by every second-dialect parse failure.
var ErrParseFailed = fmt.Errorf("runtime: second-dialect parse failed")

func colRefFields(node map[string]any) ([]string, bool) {
	ref, ok := node["ColumnRef"].(map[string]any)
	if !ok {
		return nil, false
	}
	rawFields, _ := ref["fields"].([]any)
	var names []string
	for _, f := range rawFields {
		fm, _ := f.(map[string]any)
		if s, ok := fm["String"].(map[string]any); ok {
			if str, ok := s["str"].(string); ok {
				names = append(names, str)
			}
		}
		if _, ok := fm["A_Star"]; ok {
			names = append(names, "*")
		}
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

func isStarColumnRef(node map[string]any) bool {
	names, ok := colRefFields(node)
	return ok && len(names) == 1 && names[0] == "*"
}

// valueNodeToSpec converts an A_Const, ParamRef, or boolean-literal
// TypeCast JSON node into a valueSpec, matching either a literal token or
// a positional binding. A_Const nests its literal one level deeper than
// the top-level ival/sval/boolval keys a generated-struct reading would
// suggest: v2 vendors libpg_query for Postgres 13, whose tree always puts
// the literal under a single "val" key, tagged by kind (Integer/Float/
// String); Postgres has no boolean literal node at this grammar version,
// so "true"/"false" parse as a TypeCast of a string constant to bool.
func valueNodeToSpec(node map[string]any) (valueSpec, error) {
	if p, ok := node["ParamRef"].(map[string]any); ok {
		num, _ := p["number"].(float64)
		return valueSpec{hasBinding: true, bindingIdx: int(num)}, nil
	}
	if c, ok := node["A_Const"].(map[string]any); ok {
		val, _ := c["val"].(map[string]any)
		if inner, ok := val["Integer"].(map[string]any); ok {
			return valueSpec{token: fmt.Sprintf("%v", inner["ival"])}, nil
		}
		if inner, ok := val["Float"].(map[string]any); ok {
			return valueSpec{token: fmt.Sprintf("%v", inner["str"])}, nil
		}
		if inner, ok := val["String"].(map[string]any); ok {
			str, _ := inner["str"].(string)
			return valueSpec{token: str}, nil
		}
	}
	if spec, ok, err := boolTypeCastToSpec(node); ok || err != nil {
		return spec, err
	}
	return valueSpec{}, fmt.Errorf("unsupported value expression")
}

// boolTypeCastToSpec recognizes "TRUE"/"FALSE" as the Postgres-13 parser
// represents them: a TypeCast of a string constant ('t'/'f') to bool.
func boolTypeCastToSpec(node map[string]any) (valueSpec, bool, error) {
	cast, ok := node["TypeCast"].(map[string]any)
	if !ok {
		return valueSpec{}, false, nil
	}
	typeName, _ := cast["typeName"].(map[string]any)
	names, _ := typeName["names"].([]any)
	if len(names) == 0 {
		return valueSpec{}, false, nil
	}
	last, _ := names[len(names)-1].(map[string]any)
	lastStr, _ := last["String"].(map[string]any)
	if s, _ := lastStr["str"].(string); s != "bool" {
		return valueSpec{}, false, nil
	}
	arg, _ := cast["arg"].(map[string]any)
	aconst, _ := arg["A_Const"].(map[string]any)
	val, _ := aconst["val"].(map[string]any)
	strNode, _ := val["String"].(map[string]any)
	str, _ := strNode["str"].(string)
	switch str {
	case "t":
		return valueSpec{token: "true"}, true, nil
	case "f":
		return valueSpec{token: "false"}, true, nil
	default:
		return valueSpec{}, false, fmt.Errorf("unsupported boolean literal %q", str)
	}
}

func parseInsert(sql string) (*parsedInsert, error) {
	kind, body, err := singleStatementNode(sql)
	if err != nil {
		return nil, err
	}
	if kind != "InsertStmt" {
		return nil, fmt.Errorf("%w: expected INSERT, got %s", ErrUnsupportedShape, kind)
	}
	if cols, ok := body["cols"].([]any); ok && len(cols) > 0 {
		return nil, fmt.Errorf("%w: explicit column lists are not supported", ErrUnsupportedShape)
	}
	relation, ok := body["relation"].(map[string]any)["RangeVar"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: INSERT missing target table", ErrUnsupportedShape)
	}
	tableName, _ := relation["relname"].(string)

	selectWrap, ok := body["selectStmt"].(map[string]any)["SelectStmt"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: INSERT must use VALUES (...)", ErrUnsupportedShape)
	}
	valuesLists, ok := selectWrap["valuesLists"].([]any)
	if !ok || len(valuesLists) == 0 {
		return nil, fmt.Errorf("%w: INSERT must use VALUES (...)", ErrUnsupportedShape)
	}

	var rows [][]valueSpec
	for _, vl := range valuesLists {
		listWrap, _ := vl.(map[string]any)["List"].(map[string]any)
		items, _ := listWrap["items"].([]any)
		row := make([]valueSpec, 0, len(items))
		for _, item := range items {
			spec, err := valueNodeToSpec(item.(map[string]any))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
			}
			row = append(row, spec)
		}
		rows = append(rows, row)
	}
	return &parsedInsert{table: tableName, rows: rows}, nil
}

func parseSelectTable(sql string) (string, error) {
	kind, body, err := singleStatementNode(sql)
	if err != nil {
		return "", err
	}
	if kind != "SelectStmt" {
		return "", fmt.Errorf("%w: expected SELECT, got %s", ErrUnsupportedShape, kind)
	}
	if _, ok := body["whereClause"]; ok {
		return "", fmt.Errorf("%w: SELECT with WHERE is not supported at DML time", ErrUnsupportedShape)
	}
	targets, _ := body["targetList"].([]any)
	if len(targets) != 1 {
		return "", fmt.Errorf("%w: SELECT must project a single *", ErrUnsupportedShape)
	}
	target, ok := targets[0].(map[string]any)["ResTarget"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: malformed select target", ErrUnsupportedShape)
	}
	val, _ := target["val"].(map[string]any)
	if !isStarColumnRef(val) {
		return "", fmt.Errorf("%w: SELECT must project *", ErrUnsupportedShape)
	}
	from, _ := body["fromClause"].([]any)
	if len(from) != 1 {
		return "", fmt.Errorf("%w: SELECT must have exactly one FROM source", ErrUnsupportedShape)
	}
	rangeVar, ok := from[0].(map[string]any)["RangeVar"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: FROM source must be a named table", ErrUnsupportedShape)
	}
	tableName, _ := rangeVar["relname"].(string)
	return tableName, nil
}

func parseDelete(sql string) (*parsedDelete, error) {
	kind, body, err := singleStatementNode(sql)
	if err != nil {
		return nil, err
	}
	if kind != "DeleteStmt" {
		return nil, fmt.Errorf("%w: expected DELETE, got %s", ErrUnsupportedShape, kind)
	}
	relation, ok := body["relation"].(map[string]any)["RangeVar"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: DELETE missing target table", ErrUnsupportedShape)
	}
	tableName, _ := relation["relname"].(string)

	whereClause, ok := body["whereClause"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: DELETE requires a WHERE clause", ErrUnsupportedShape)
	}

	var conjuncts []map[string]any
	if boolExpr, ok := whereClause["BoolExpr"].(map[string]any); ok {
		boolop, _ := boolExpr["boolop"].(string)
		if boolop != "AND_EXPR" {
			return nil, fmt.Errorf("%w: DELETE predicate must be an AND of equalities", ErrUnsupportedShape)
		}
		args, _ := boolExpr["args"].([]any)
		for _, a := range args {
			am, _ := a.(map[string]any)
			conjuncts = append(conjuncts, am)
		}
	} else {
		conjuncts = append(conjuncts, whereClause)
	}

	predicates := make(map[string]valueSpec)
	for _, c := range conjuncts {
		col, spec, err := equalityPredicate(c)
		if err != nil {
			return nil, err
		}
		predicates[strings.ToUpper(col)] = spec
	}
	return &parsedDelete{table: tableName, predicates: predicates}, nil
}

func equalityPredicate(node map[string]any) (string, valueSpec, error) {
	aexpr, ok := node["A_Expr"].(map[string]any)
	if !ok {
		return "", valueSpec{}, fmt.Errorf("%w: DELETE predicate must be a simple equality", ErrUnsupportedShape)
	}
	if k, _ := aexpr["kind"].(string); k != "AEXPR_OP" {
		return "", valueSpec{}, fmt.Errorf("%w: DELETE predicate must use =", ErrUnsupportedShape)
	}
	name, _ := aexpr["name"].([]any)
	if len(name) != 1 {
		return "", valueSpec{}, fmt.Errorf("%w: DELETE predicate must use =", ErrUnsupportedShape)
	}
	opName, _ := name[0].(map[string]any)["String"].(map[string]any)
	if opName == nil || opName["str"] != "=" {
		return "", valueSpec{}, fmt.Errorf("%w: DELETE predicate must use =", ErrUnsupportedShape)
	}

	lexpr, _ := aexpr["lexpr"].(map[string]any)
	rexpr, _ := aexpr["rexpr"].(map[string]any)

	if cols, ok := colRefFields(lexpr); ok {
		spec, err := valueNodeToSpec(rexpr)
		if err != nil {
			return "", valueSpec{}, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
		}
		return cols[len(cols)-1], spec, nil
	}
	if cols, ok := colRefFields(rexpr); ok {
		spec, err := valueNodeToSpec(lexpr)
		if err != nil {
			return "", valueSpec{}, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
		}
		return cols[len(cols)-1], spec, nil
	}
	return "", valueSpec{}, fmt.Errorf("%w: DELETE predicate must compare a column to a value", ErrUnsupportedShape)
}

// ErrUnsupportedShape is wrapped by every DML statement shape this
// dispatcher does not implement.
var ErrUnsupportedShape = fmt.Errorf("runtime: unsupported DML statement shape")
