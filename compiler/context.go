package compiler

import (
	"fmt"
	"log/slog"

	"github.com/lalithsuresh/differential-datalog/ir"
)

// Context is the translation context: fresh-name generators, the scope
// stack, the registry of declared type-defs/relations, and the program
// accumulator. It is an owned value threaded through compilation — there
// is no package-level mutable state (spec.md §9, "Global-like context
// state").
type Context struct {
	opts Options

	program ir.Program

	typeDefs  map[string]*ir.TypeDef
	relations map[string]*ir.Relation

	scopes scopeStack

	// globalSeq is monotonic for the lifetime of the Context: it never
	// resets, so no two emitted relation/type names collide across any
	// sequence of DDL statements.
	globalSeq int

	// localSeq/colSeq are per-query: BeginQuery resets them so that
	// "no two local variables collide" is scoped to one query
	// compilation, per spec.md §3 "Name generators".
	localSeq int
	colSeq   int
}

// NewContext returns an empty Context ready to translate a DDL list.
func NewContext(opts Options) *Context {
	return &Context{
		opts:      opts,
		typeDefs:  make(map[string]*ir.TypeDef),
		relations: make(map[string]*ir.Relation),
	}
}

// BeginQuery resets the per-query local name space and drops every scope
// left over from the previous query. Call it once per top-level query
// compiled from a CREATE VIEW body.
func (c *Context) BeginQuery() {
	c.localSeq = 0
	c.colSeq = 0
	c.scopes = scopeStack{}
}

// FreshGlobalName returns a name unique across the Context's lifetime,
// e.g. FreshGlobalName("tmp") -> "tmp1", "tmp2", ...
func (c *Context) FreshGlobalName(prefix string) string {
	c.globalSeq++
	return fmt.Sprintf("%s%d", prefix, c.globalSeq)
}

// FreshLocalName returns a name unique within the current query
// compilation, e.g. FreshLocalName("v") -> "v1", "v2", ...
func (c *Context) FreshLocalName(prefix string) string {
	switch prefix {
	case "col":
		c.colSeq++
		return fmt.Sprintf("col%d", c.colSeq)
	default:
		c.localSeq++
		return fmt.Sprintf("%s%d", prefix, c.localSeq)
	}
}

// AddTypeDef registers td. A duplicate name is an invariant violation: the
// compiler's own fresh-name generator must never produce a collision.
func (c *Context) AddTypeDef(td ir.TypeDef) error {
	if _, exists := c.typeDefs[td.Name]; exists {
		return ir.NewTranslationError(ir.ErrKindInvariant, nil, "duplicate type-def name %q", td.Name)
	}
	c.typeDefs[td.Name] = &td
	c.program.TypeDefs = append(c.program.TypeDefs, td)
	return nil
}

// AddRelation registers r. Its row type must already resolve to a
// registered TypeDef (spec.md §3, relations invariant).
func (c *Context) AddRelation(r ir.Relation) error {
	if _, exists := c.relations[r.Name]; exists {
		return ir.NewTranslationError(ir.ErrKindInvariant, nil, "duplicate relation name %q", r.Name)
	}
	named, ok := r.RowType.(ir.NamedType)
	if !ok {
		return ir.NewTranslationError(ir.ErrKindInvariant, nil, "relation %q row type must be a named type, got %s", r.Name, r.RowType)
	}
	if _, ok := c.typeDefs[named.Name]; !ok {
		return ir.NewTranslationError(ir.ErrKindInvariant, nil, "relation %q row type %q has no registered type-def", r.Name, named.Name)
	}
	c.relations[r.Name] = &r
	c.program.Relations = append(c.program.Relations, r)
	return nil
}

// AddRule appends r to the emitted program.
func (c *Context) AddRule(r ir.Rule) {
	c.program.Rules = append(c.program.Rules, r)
}

// LookupRelation returns the registered relation named name.
func (c *Context) LookupRelation(name string) (*ir.Relation, error) {
	r, ok := c.relations[name]
	if !ok {
		return nil, ir.NewTranslationError(ir.ErrKindUnknownSchemaObject, name, "unknown relation %q", name)
	}
	return r, nil
}

// LookupTypeDef returns the registered type-def named name.
func (c *Context) LookupTypeDef(name string) (*ir.TypeDef, error) {
	td, ok := c.typeDefs[name]
	if !ok {
		return nil, ir.NewTranslationError(ir.ErrKindUnknownSchemaObject, name, "unknown type %q", name)
	}
	return td, nil
}

// StructTypeOf resolves a NamedType row type down to its underlying
// StructType, failing if it is not registered.
func (c *Context) StructTypeOf(t ir.Type) (ir.StructType, error) {
	named, ok := t.(ir.NamedType)
	if !ok {
		if st, ok := t.(ir.StructType); ok {
			return st, nil
		}
		return ir.StructType{}, ir.NewTranslationError(ir.ErrKindInvariant, nil, "expected a named or struct type, got %s", t)
	}
	td, err := c.LookupTypeDef(named.Name)
	if err != nil {
		return ir.StructType{}, err
	}
	return td.Struct, nil
}

// EnterScope pushes a new (row variable, row type) scope, live for the
// duration of the query body currently being compiled.
func (c *Context) EnterScope(v ir.VarRef, t ir.StructType) {
	c.scopes.push(v, t)
}

// ExitScope pops the innermost scope.
func (c *Context) ExitScope() {
	c.scopes.pop()
}

// ResolveColumn resolves an unqualified column name against the innermost
// scope exposing it, returning a FieldAccess expression.
func (c *Context) ResolveColumn(node any, name string) (ir.Expr, error) {
	varRef, fieldType, ok := c.scopes.resolve(name)
	if !ok {
		return nil, ir.NewTranslationError(ir.ErrKindUnknownSchemaObject, node, "column %q not found in any scope", name)
	}
	return ir.FieldAccess{Base: varRef, Field: name, FieldType_: fieldType}, nil
}

// Program returns the accumulated program. Safe to call at any point;
// typically called once translation of the whole DDL list is complete.
func (c *Context) Program() ir.Program {
	return c.program
}

func (c *Context) logger() *slog.Logger {
	return c.opts.logger()
}
