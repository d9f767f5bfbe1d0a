package compiler

import "github.com/lalithsuresh/differential-datalog/ir"

// rowScope binds an in-scope row variable to its struct type, the way a
// FROM clause or subquery introduces one name for the duration of a query
// body's compilation.
type rowScope struct {
	varRef  ir.VarRef
	rowType ir.StructType
}

// scopeStack resolves unqualified column references against the innermost
// scope whose type has a field of that name, mirroring the teacher's
// symbolTable parent-chain lookup (transpiler/symbols.go) but as an
// explicit stack rather than a linked chain, since scopes here nest only
// within one query's compilation.
type scopeStack struct {
	scopes []rowScope
}

func (s *scopeStack) push(v ir.VarRef, t ir.StructType) {
	s.scopes = append(s.scopes, rowScope{varRef: v, rowType: t})
}

func (s *scopeStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// resolve finds the innermost scope exposing a field named name and
// returns the scope's row variable, the field's type, and whether any
// scope had such a field.
func (s *scopeStack) resolve(name string) (ir.VarRef, ir.Type, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		sc := s.scopes[i]
		if idx := sc.rowType.FieldIndex(name); idx >= 0 {
			return sc.varRef, sc.rowType.Fields[idx].Type, true
		}
	}
	return ir.VarRef{}, nil, false
}

// current returns the innermost scope, if any.
func (s *scopeStack) current() (rowScope, bool) {
	if len(s.scopes) == 0 {
		return rowScope{}, false
	}
	return s.scopes[len(s.scopes)-1], true
}
