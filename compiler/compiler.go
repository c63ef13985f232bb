package compiler

import (
	"bytes"
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler/analyze"
	"github.com/tak-ka3/9cc/compiler/asm"
	"github.com/tak-ka3/9cc/compiler/back"
	"github.com/tak-ka3/9cc/compiler/front"
	"github.com/tak-ka3/9cc/compiler/vm"
)

// ReadFile reads an expression from a file.
// A single trailing line break is dropped so caret columns match the line.
func ReadFile(ctx context.Context, name string) ([]byte, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	text = bytes.TrimSuffix(text, []byte("\n"))
	text = bytes.TrimSuffix(text, []byte("\r"))

	return text, nil
}

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return Compile(ctx, text)
}

// Compile translates the expression into a program whose main returns its value.
func Compile(ctx context.Context, text []byte) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "size", len(text))
	defer tr.Finish("err", &err)

	x, err := front.ParseText(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	obj, err = back.Program(ctx, nil, x)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return obj, nil
}

// CompileBody is Compile without the program header and return.
func CompileBody(ctx context.Context, text []byte) (obj []byte, err error) {
	x, err := front.ParseText(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	obj, err = back.Body(ctx, nil, x)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return obj, nil
}

// Body returns the instructions computing the expression
// without the program wrapper.
func Body(ctx context.Context, text []byte) (code []asm.Instr, err error) {
	x, err := front.ParseText(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	code, err = back.Generate(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return code, nil
}

// Eval computes the expression by walking the tree.
func Eval(ctx context.Context, text []byte) (int64, error) {
	x, err := front.ParseText(ctx, text)
	if err != nil {
		return 0, errors.Wrap(err, "parse text")
	}

	return analyze.Eval(ctx, x)
}

// Run compiles the expression and executes the emitted program.
func Run(ctx context.Context, text []byte) (int64, error) {
	obj, err := Compile(ctx, text)
	if err != nil {
		return 0, err
	}

	return Exec(ctx, obj)
}

// Exec executes assembly text.
func Exec(ctx context.Context, obj []byte) (int64, error) {
	code, err := asm.Parse(obj)
	if err != nil {
		return 0, errors.Wrap(err, "parse asm")
	}

	return vm.Run(ctx, code)
}
