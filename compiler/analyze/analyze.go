package analyze

import (
	"context"
	"fmt"
	"reflect"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler/ast"
	"github.com/tak-ka3/9cc/compiler/diag"
)

type (
	UnsupportedASTNodeError struct{ T ast.Node }
)

// Eval computes the value of the tree directly.
// It is the reference the generated code is checked against.
func Eval(ctx context.Context, x ast.Node) (v int64, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "analyze: eval")
	defer tr.Finish("v", &v, "err", &err)

	return eval(ctx, x)
}

func eval(ctx context.Context, x ast.Node) (int64, error) {
	switch x := x.(type) {
	case ast.Int:
		return x.Value, nil
	case ast.BinOp:
		l, err := eval(ctx, x.Left)
		if err != nil {
			return 0, err
		}

		r, err := eval(ctx, x.Right)
		if err != nil {
			return 0, err
		}

		return binop(x.Op, l, r)
	default:
		return 0, NewUnsupportedASTNode(x)
	}
}

func binop(op ast.Op, l, r int64) (int64, error) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Sub:
		return l - r, nil
	case ast.Mul:
		return l * r, nil
	case ast.Div:
		if r == 0 {
			return 0, diag.ErrDivideByZero
		}

		if r == -1 && l == -1<<63 {
			return 0, diag.ErrDivideOverflow
		}

		return l / r, nil
	case ast.Eq:
		return b2i(l == r), nil
	case ast.Ne:
		return b2i(l != r), nil
	case ast.Lt:
		return b2i(l < r), nil
	case ast.Le:
		return b2i(l <= r), nil
	default:
		return 0, errors.New("unsupported operator: %v", op)
	}
}

func b2i(v bool) int64 {
	if v {
		return 1
	}

	return 0
}

func NewUnsupportedASTNode(x ast.Node) UnsupportedASTNodeError {
	return UnsupportedASTNodeError{
		T: x,
	}
}

func (e UnsupportedASTNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.T))
}
