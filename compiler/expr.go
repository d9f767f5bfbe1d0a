package compiler

import (
	"strings"

	"github.com/ha1tch/tsqlparser/ast"
	"github.com/lalithsuresh/differential-datalog/ir"
)

// translateScalarExpr resolves identifiers through the Context's scope
// stack, constant-folds literals, and produces an ir.Expr with a derived
// type, per spec.md §4.1's "translate scalar expression".
func translateScalarExpr(c *Context, e ast.Expression) (ir.Expr, error) {
	switch x := e.(type) {
	case *ast.Identifier:
		return c.ResolveColumn(x, strings.ToUpper(x.Value))

	case *ast.QualifiedIdentifier:
		if len(x.Parts) == 0 {
			return nil, ir.NewTranslationError(ir.ErrKindUnsupported, x, "empty qualified identifier")
		}
		return c.ResolveColumn(x, strings.ToUpper(x.Parts[len(x.Parts)-1].Value))

	case *ast.IntegerLiteral:
		return ir.Literal{Value: x.Value, LitType: ir.SignedType{Width: 64}}, nil

	case *ast.StringLiteral:
		return ir.Literal{Value: x.Value, LitType: ir.StringType{}}, nil

	case *ast.InfixExpression:
		left, err := translateScalarExpr(c, x.Left)
		if err != nil {
			return nil, err
		}
		right, err := translateScalarExpr(c, x.Right)
		if err != nil {
			return nil, err
		}
		return ir.BinaryExpr{
			Op:         x.Operator,
			Left:       left,
			Right:      right,
			ResultType: ir.BoolType{},
		}, nil

	default:
		return nil, ir.NewTranslationError(ir.ErrKindUnsupported, e, "unsupported expression %T", e)
	}
}
