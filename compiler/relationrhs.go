package compiler

import "github.com/lalithsuresh/differential-datalog/ir"

// RelationRHS is "a partial query producing rows of the given type named
// by the given variable" (spec.md §3): a small owned builder threaded
// through query compilation, rather than a mutable global accumulator
// (spec.md §9, "Mutable in-place building of RelationRHS").
type RelationRHS struct {
	RowVar  ir.VarRef
	RowType ir.Type
	Body    []ir.BodyFragment
}

// newRelationRHS builds a RelationRHS whose row variable is already bound
// (either by a literal atom over a source relation, or by an assignment
// appended to body) — there is never a separate "declare" step exposed
// here, because by construction each RelationRHS's row variable is bound
// at exactly one point before the RelationRHS escapes this package.
func newRelationRHS(v ir.VarRef, t ir.Type, body []ir.BodyFragment) *RelationRHS {
	return &RelationRHS{RowVar: v, RowType: t, Body: body}
}

// Use returns the use-site reference form of the row variable.
func (r *RelationRHS) Use() ir.VarRef { return r.RowVar }

// Append returns a new RelationRHS with frag appended to the body,
// preserving the append-returning (persistent) style for the caller while
// keeping the struct itself a plain value.
func (r *RelationRHS) Append(frag ir.BodyFragment) *RelationRHS {
	body := make([]ir.BodyFragment, len(r.Body), len(r.Body)+1)
	copy(body, r.Body)
	body = append(body, frag)
	return &RelationRHS{RowVar: r.RowVar, RowType: r.RowType, Body: body}
}
