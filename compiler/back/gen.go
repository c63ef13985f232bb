package back

import (
	"context"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler/asm"
	"github.com/tak-ka3/9cc/compiler/ast"
)

var (
	rax = [1]asm.Reg{asm.RAX}
	rdi = [1]asm.Reg{asm.RDI}
	al  = [1]asm.Reg{asm.AL}
)

var conds = map[ast.Op]asm.Cond{
	ast.Eq: asm.Equal,
	ast.Ne: asm.NotEqual,
	ast.Lt: asm.Less,
	ast.Le: asm.LessOrEqual,
}

// Generate lowers the tree into stack machine code.
// The code pushes exactly one value, the value of root.
func Generate(ctx context.Context, root ast.Node) (code []asm.Instr, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: generate")
	defer tr.Finish("err", &err)

	code, err = gen(ctx, nil, root)
	if err != nil {
		return nil, err
	}

	if tr.If("code") {
		for i, x := range code {
			tr.Printw("code", "i", i, "typ", tlog.NextAsType, x, "val", x)
		}
	}

	return code, nil
}

// Lines returns the generated code as assembly text lines.
func Lines(ctx context.Context, root ast.Node) ([]string, error) {
	b, err := Body(ctx, nil, root)
	if err != nil {
		return nil, err
	}

	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n"), nil
}

// Body appends the generated code as assembly text.
func Body(ctx context.Context, b []byte, root ast.Node) ([]byte, error) {
	code, err := Generate(ctx, root)
	if err != nil {
		return nil, err
	}

	return asm.AppendAll(b, code)
}

// Program appends a complete program returning the value of root from main.
func Program(ctx context.Context, b []byte, root ast.Node) (_ []byte, err error) {
	b = append(b, asm.Header...)

	b, err = Body(ctx, b, root)
	if err != nil {
		return nil, err
	}

	b = append(b, asm.Footer...)

	return b, nil
}

func gen(ctx context.Context, code []asm.Instr, x ast.Node) (_ []asm.Instr, err error) {
	switch x := x.(type) {
	case ast.Int:
		return genConst(code, x.Value), nil
	case ast.BinOp:
		code, err = gen(ctx, code, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		code, err = gen(ctx, code, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		code = append(code,
			asm.Pop{Out: rdi},
			asm.Pop{Out: rax},
		)

		switch x.Op {
		case ast.Add:
			code = append(code, asm.Add{Out: rax, In: rdi})
		case ast.Sub:
			code = append(code, asm.Sub{Out: rax, In: rdi})
		case ast.Mul:
			code = append(code, asm.IMul{Out: rax, In: rdi})
		case ast.Div:
			code = append(code, asm.Cqo{}, asm.IDiv{In: rdi})
		case ast.Eq, ast.Ne, ast.Lt, ast.Le:
			code = append(code,
				asm.Cmp{In: [2]asm.Reg{asm.RAX, asm.RDI}},
				asm.Set{Cond: conds[x.Op], Out: al},
				asm.Movzb{Out: rax, In: al},
			)
		default:
			return nil, errors.New("unsupported operator: %v", x.Op)
		}

		code = append(code, asm.Push{In: rax})

		return code, nil
	default:
		return nil, errors.New("unsupported node: %T", x)
	}
}

// genConst pushes v. push only takes a sign-extended 32-bit immediate,
// wider values go through rax.
func genConst(code []asm.Instr, v int64) []asm.Instr {
	if asm.FitsImm32(v) {
		return append(code, asm.PushImm{Word: v})
	}

	return append(code,
		asm.MovImm{Out: rax, Word: v},
		asm.Push{In: rax},
	)
}
