package back

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tak-ka3/9cc/compiler/asm"
	"github.com/tak-ka3/9cc/compiler/ast"
)

func lit(v int64) ast.Int { return ast.Int{Value: v} }

func bin(op ast.Op, l, r ast.Node) ast.BinOp {
	return ast.BinOp{Op: op, Left: l, Right: r}
}

func TestSmoke(t *testing.T) {
	lines, err := Lines(context.Background(), bin(ast.Sub, lit(5), lit(3)))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"  push 5",
		"  push 3",
		"  pop rdi",
		"  pop rax",
		"  sub rax, rdi",
		"  push rax",
	}, lines)
}

func TestOperators(t *testing.T) {
	for _, tc := range []struct {
		Op   ast.Op
		Tail []string
	}{
		{ast.Add, []string{"  add rax, rdi"}},
		{ast.Mul, []string{"  imul rax, rdi"}},
		{ast.Div, []string{"  cqo", "  idiv rdi"}},
		{ast.Eq, []string{"  cmp rax, rdi", "  sete al", "  movzb rax, al"}},
		{ast.Ne, []string{"  cmp rax, rdi", "  setne al", "  movzb rax, al"}},
		{ast.Lt, []string{"  cmp rax, rdi", "  setl al", "  movzb rax, al"}},
		{ast.Le, []string{"  cmp rax, rdi", "  setle al", "  movzb rax, al"}},
	} {
		lines, err := Lines(context.Background(), bin(tc.Op, lit(1), lit(2)))
		require.NoError(t, err)

		want := []string{"  push 1", "  push 2", "  pop rdi", "  pop rax"}
		want = append(want, tc.Tail...)
		want = append(want, "  push rax")

		assert.Equal(t, want, lines, "op %v", tc.Op)
	}
}

func TestEqualityIsNotNotEqual(t *testing.T) {
	eq, err := Generate(context.Background(), bin(ast.Eq, lit(1), lit(1)))
	require.NoError(t, err)

	var sets []asm.Cond
	for _, x := range eq {
		if s, ok := x.(asm.Set); ok {
			sets = append(sets, s.Cond)
		}
	}

	assert.Equal(t, []asm.Cond{asm.Equal}, sets)
}

func TestPostOrder(t *testing.T) {
	// (1+2)*(3-4)
	x := bin(ast.Mul, bin(ast.Add, lit(1), lit(2)), bin(ast.Sub, lit(3), lit(4)))

	code, err := Generate(context.Background(), x)
	require.NoError(t, err)

	depth, maxDepth := 0, 0

	for _, x := range code {
		switch x.(type) {
		case asm.PushImm, asm.Push:
			depth++
		case asm.Pop:
			depth--
		}

		require.True(t, depth >= 0)

		if depth > maxDepth {
			maxDepth = depth
		}
	}

	assert.Equal(t, 1, depth)
	assert.Equal(t, 3, maxDepth)

	lines, err := Lines(context.Background(), x)
	require.NoError(t, err)

	assert.Equal(t, "  push 1", lines[0])
	assert.Equal(t, "  push 2", lines[1])
	assert.Equal(t, "  imul rax, rdi", lines[len(lines)-2])
}

func TestWideConst(t *testing.T) {
	lines, err := Lines(context.Background(), lit(1<<40))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"  mov rax, 1099511627776",
		"  push rax",
	}, lines)

	lines, err = Lines(context.Background(), lit(-1<<31))
	require.NoError(t, err)

	assert.Equal(t, []string{"  push -2147483648"}, lines)
}

func TestProgram(t *testing.T) {
	b, err := Program(context.Background(), nil, lit(42))
	require.NoError(t, err)

	assert.Equal(t, asm.Header+"  push 42\n"+asm.Footer, string(b))
}

func TestUnsupported(t *testing.T) {
	_, err := Generate(context.Background(), "x")
	assert.Error(t, err)

	_, err = Generate(context.Background(), bin(ast.Add, lit(1), 3.5))
	assert.Error(t, err)

	_, err = Generate(context.Background(), bin(ast.Op(100), lit(1), lit(2)))
	assert.Error(t, err)
}
