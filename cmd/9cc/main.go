package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler"
	"github.com/tak-ka3/9cc/compiler/diag"
	"github.com/tak-ka3/9cc/compiler/format"
	"github.com/tak-ka3/9cc/compiler/front"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile,c",
		Description: "compile expression into x86-64 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags:       compileFlags(),
	}

	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print expression tokens",
		Action:      tokensAct,
		Args:        cli.Args{},
		Flags:       inputFlags(),
	}

	astCmd := &cli.Command{
		Name:        "ast,parse",
		Description: "print abstract syntax tree",
		Action:      astAct,
		Args:        cli.Args{},
		Flags: append(inputFlags(),
			cli.NewFlag("tree,t", false, "print as indented tree"),
		),
	}

	evalCmd := &cli.Command{
		Name:        "eval",
		Description: "evaluate expression by walking the tree",
		Action:      evalAct,
		Args:        cli.Args{},
		Flags:       inputFlags(),
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile expression and execute the program on the stack machine",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: append(inputFlags(),
			cli.NewFlag("asm", "", "execute assembly file instead"),
		),
	}

	app := &cli.Command{
		Name:        "9cc",
		Description: "9cc compiles an arithmetic expression into assembly returning its value\n\nuse -- before expressions starting with -, pass - to read stdin",
		Before:      before,
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: append(compileFlags(),
			cli.NewFlag("log", "", "log output (stderr, stdout or file name, empty is off)"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics (tokens, consume, ast, code, vm_step)"),
			cli.HelpFlag,
		),
		Commands: []*cli.Command{
			compileCmd,
			tokensCmd,
			astCmd,
			evalCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func inputFlags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("file,f", "", "read expression from file"),
	}
}

func compileFlags() []*cli.Flag {
	return append(inputFlags(),
		cli.NewFlag("body", false, "emit instructions only, without program header and return"),
	)
}

func before(c *cli.Command) (err error) {
	var w io.Writer = io.Discard

	switch name := c.String("log"); name {
	case "":
	case "stderr":
		w = tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags)
	case "stdout":
		w = tlog.NewConsoleWriter(os.Stdout, tlog.LstdFlags)
	default:
		f, err := os.Create(name)
		if err != nil {
			return errors.Wrap(err, "open log")
		}

		w = tlog.NewConsoleWriter(f, tlog.LstdFlags)
	}

	tlog.DefaultLogger = tlog.New(w)

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := rootContext()

	text, err := input(ctx, c)
	if err != nil {
		return err
	}

	compile := compiler.Compile
	if c.Bool("body") {
		compile = compiler.CompileBody
	}

	obj, err := compile(ctx, text)
	if err != nil {
		return fail(text, err)
	}

	_, err = os.Stdout.Write(obj)

	return err
}

func tokensAct(c *cli.Command) (err error) {
	ctx := rootContext()

	text, err := input(ctx, c)
	if err != nil {
		return err
	}

	toks, err := front.Tokenize(ctx, text)
	if err != nil {
		return fail(text, err)
	}

	for _, t := range toks {
		fmt.Printf("%-5v %3d %q\n", t.Kind, t.Pos, t.Text(text))
	}

	return nil
}

func astAct(c *cli.Command) (err error) {
	ctx := rootContext()

	text, err := input(ctx, c)
	if err != nil {
		return err
	}

	x, err := front.ParseText(ctx, text)
	if err != nil {
		return fail(text, err)
	}

	var b []byte

	if c.Bool("tree") {
		b, err = format.Tree(ctx, nil, x)
	} else {
		b, err = format.Format(ctx, nil, x)
		b = append(b, '\n')
	}
	if err != nil {
		return errors.Wrap(err, "format")
	}

	_, err = os.Stdout.Write(b)

	return err
}

func evalAct(c *cli.Command) (err error) {
	ctx := rootContext()

	text, err := input(ctx, c)
	if err != nil {
		return err
	}

	v, err := compiler.Eval(ctx, text)
	if err != nil {
		return fail(text, err)
	}

	fmt.Printf("%d\n", v)

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := rootContext()

	var v int64

	if name := c.String("asm"); name != "" {
		obj, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "read asm")
		}

		v, err = compiler.Exec(ctx, obj)
		if err != nil {
			return errors.Wrap(err, "%v", name)
		}
	} else {
		text, err := input(ctx, c)
		if err != nil {
			return err
		}

		v, err = compiler.Run(ctx, text)
		if err != nil {
			return fail(text, err)
		}
	}

	fmt.Printf("%d\n", v)

	return nil
}

// input returns the expression: the single argument, the --file contents,
// or stdin when the argument is "-".
func input(ctx context.Context, c *cli.Command) ([]byte, error) {
	return readInput(ctx, c.String("file"), c.Args, os.Stdin)
}

func readInput(ctx context.Context, file string, args []string, stdin *os.File) ([]byte, error) {
	if file != "" {
		if len(args) != 0 {
			return nil, errors.New("invalid number of arguments")
		}

		return compiler.ReadFile(ctx, file)
	}

	if len(args) != 1 {
		return nil, errors.New("invalid number of arguments")
	}

	if args[0] != "-" {
		return []byte(args[0]), nil
	}

	if term.IsTerminal(int(stdin.Fd())) {
		return nil, errors.New("stdin is a terminal, pipe the expression in")
	}

	text, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.Wrap(err, "read stdin")
	}

	return bytes.TrimRight(text, "\r\n"), nil
}

// fail prints compile errors as the input with a caret under the failing
// column and exits. Other errors are returned to cli.
func fail(text []byte, err error) error {
	code, err := report(os.Stderr, text, err)
	if code != 0 {
		os.Exit(code)
	}

	return err
}

// report writes a compile error to w and returns exit code 1.
// Other errors are returned with code 0.
func report(w io.Writer, text []byte, err error) (int, error) {
	var d *diag.Error
	if !errors.As(err, &d) {
		return 0, err
	}

	tlog.Printw("compile failed", "err", err, "from", d.From)

	return 1, diag.Report(w, text, d)
}

func rootContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}
