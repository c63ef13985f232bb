package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/tak-ka3/9cc/compiler/ast"
)

// Format appends x as fully parenthesized infix text.
func Format(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return formatExpr(ctx, b, x)
}

func formatExpr(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Int:
		b = hfmt.Appendf(b, "%d", x.Value)
	case ast.BinOp:
		b = append(b, '(')

		b, err = formatExpr(ctx, b, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = hfmt.Appendf(b, " %v ", x.Op)

		b, err = formatExpr(ctx, b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

// Tree appends x as an indented tree, one node per line.
func Tree(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return tree(ctx, b, x, 0)
}

func tree(ctx context.Context, b []byte, x ast.Node, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Int:
		b = app(b, d, "%d\n", x.Value)
	case ast.BinOp:
		b = app(b, d, "%v\n", x.Op)

		b, err = tree(ctx, b, x.Left, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b, err = tree(ctx, b, x.Right, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	for ; d > len(tabs); d -= len(tabs) {
		b = append(b, tabs...)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
