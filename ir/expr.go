package ir

// Expr is the closed variant of IR expressions usable inside a rule body or
// head atom.
type Expr interface {
	irExpr()
	Type() Type
}

// VarRef is a *use-site* reference to a row variable. The name is bound
// either by a VarDecl of the same name or by the VarRef's own position as
// the row of a positive body literal, e.g. v1 in "Rhosts(v1)".
type VarRef struct {
	Name    string
	VarType Type
}

func (VarRef) irExpr()         {}
func (v VarRef) Type() Type    { return v.VarType }
func (v VarRef) String() string { return v.Name }

// VarDecl is the *declaration-site* form of a row variable: the one place
// in a rule body where that name is bound. The compiler takes each
// VarDecl's name from Context.FreshLocalName; no check rejects a rule body
// that contains two VarDecls of the same name.
type VarDecl struct {
	Name    string
	VarType Type
}

func (VarDecl) irExpr()      {}
func (v VarDecl) Type() Type { return v.VarType }

// Ref returns the use-site form of a declared variable.
func (v VarDecl) Ref() VarRef { return VarRef{Name: v.Name, VarType: v.VarType} }

// FieldValue is one (name, expr) pair inside a StructCtor.
type FieldValue struct {
	Name  string
	Value Expr
}

// StructCtor builds a struct value of the named type from field values, in
// the type's declared field order.
type StructCtor struct {
	TypeName string
	Fields   []FieldValue
	CtorType Type
}

func (StructCtor) irExpr()      {}
func (s StructCtor) Type() Type { return s.CtorType }

// Assign binds Target (a VarDecl) to the evaluation of Value. Used both as
// a condition body-fragment (binding projection results or subquery rows)
// and to build the binding rule for a CREATE VIEW.
type Assign struct {
	Target VarDecl
	Value  Expr
}

func (Assign) irExpr()      {}
func (a Assign) Type() Type { return a.Target.VarType }

// Literal is a constant-folded scalar value.
type Literal struct {
	Value    any
	LitType  Type
}

func (Literal) irExpr()      {}
func (l Literal) Type() Type { return l.LitType }

// BinaryExpr is a scalar comparison or boolean combinator, e.g. the
// translated form of a WHERE predicate such as "id = 1" or "a AND b".
type BinaryExpr struct {
	Op         string
	Left       Expr
	Right      Expr
	ResultType Type
}

func (BinaryExpr) irExpr()      {}
func (b BinaryExpr) Type() Type { return b.ResultType }

// FieldAccess projects a single field out of a struct-typed expression,
// e.g. "v1.id".
type FieldAccess struct {
	Base       Expr
	Field      string
	FieldType_ Type
}

func (FieldAccess) irExpr()      {}
func (f FieldAccess) Type() Type { return f.FieldType_ }
