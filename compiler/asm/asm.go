package asm

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
)

type (
	Reg  int
	Cond string

	// Instr is one of the instruction structs below.
	Instr any

	PushImm struct {
		Word int64
	}

	Push struct {
		In [1]Reg
	}

	Pop struct {
		Out [1]Reg
	}

	MovImm struct {
		Out  [1]Reg
		Word int64
	}

	Add struct {
		Out [1]Reg
		In  [1]Reg
	}

	Sub struct {
		Out [1]Reg
		In  [1]Reg
	}

	IMul struct {
		Out [1]Reg
		In  [1]Reg
	}

	// Cqo sign-extends RAX into RDX.
	Cqo struct{}

	// IDiv divides RDX:RAX by In, quotient to RAX, remainder to RDX.
	IDiv struct {
		In [1]Reg
	}

	Cmp struct {
		In [2]Reg
	}

	Set struct {
		Cond Cond
		Out  [1]Reg
	}

	Movzb struct {
		Out [1]Reg
		In  [1]Reg
	}

	Ret struct{}
)

const (
	RAX Reg = iota
	RDI
	RDX
	AL
)

const (
	Equal       Cond = "e"
	NotEqual    Cond = "ne"
	Less        Cond = "l"
	LessOrEqual Cond = "le"
)

const indent = "  "

var regNames = [...]string{
	RAX: "rax",
	RDI: "rdi",
	RDX: "rdx",
	AL:  "al",
}

// Header and Footer wrap an instruction body into a program
// returning the value left on the stack.
const (
	Header = ".intel_syntax noprefix\n.globl main\nmain:\n"
	Footer = indent + "pop rax\n" + indent + "ret\n"
)

// FitsImm32 reports whether v can be pushed as a sign-extended immediate.
func FitsImm32(v int64) bool {
	return v >= -1<<31 && v < 1<<31
}

// Append renders one instruction as a line of Intel syntax assembly.
func Append(b []byte, x Instr) ([]byte, error) {
	switch x := x.(type) {
	case PushImm:
		return hfmt.Appendf(b, indent+"push %d\n", x.Word), nil
	case Push:
		return hfmt.Appendf(b, indent+"push %v\n", x.In[0]), nil
	case Pop:
		return hfmt.Appendf(b, indent+"pop %v\n", x.Out[0]), nil
	case MovImm:
		return hfmt.Appendf(b, indent+"mov %v, %d\n", x.Out[0], x.Word), nil
	case Add:
		return hfmt.Appendf(b, indent+"add %v, %v\n", x.Out[0], x.In[0]), nil
	case Sub:
		return hfmt.Appendf(b, indent+"sub %v, %v\n", x.Out[0], x.In[0]), nil
	case IMul:
		return hfmt.Appendf(b, indent+"imul %v, %v\n", x.Out[0], x.In[0]), nil
	case Cqo:
		return append(b, indent+"cqo\n"...), nil
	case IDiv:
		return hfmt.Appendf(b, indent+"idiv %v\n", x.In[0]), nil
	case Cmp:
		return hfmt.Appendf(b, indent+"cmp %v, %v\n", x.In[0], x.In[1]), nil
	case Set:
		return hfmt.Appendf(b, indent+"set%s %v\n", x.Cond, x.Out[0]), nil
	case Movzb:
		return hfmt.Appendf(b, indent+"movzb %v, %v\n", x.Out[0], x.In[0]), nil
	case Ret:
		return append(b, indent+"ret\n"...), nil
	default:
		return nil, errors.New("unsupported instruction: %T", x)
	}
}

// AppendAll renders a whole instruction sequence.
func AppendAll(b []byte, code []Instr) (_ []byte, err error) {
	for i, x := range code {
		b, err = Append(b, x)
		if err != nil {
			return nil, errors.Wrap(err, "instr %d", i)
		}
	}

	return b, nil
}

// Parse reads assembly in the dialect produced by Append.
// Directives and labels are skipped.
func Parse(text []byte) (code []Instr, err error) {
	s := bufio.NewScanner(bytes.NewReader(text))

	lnum := 0
	for s.Scan() {
		lnum++

		line := strings.TrimSpace(s.Text())

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		if line == "" || line[0] == '.' || strings.HasSuffix(line, ":") {
			continue
		}

		x, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrap(err, "line %d", lnum)
		}

		code = append(code, x)
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "scanner")
	}

	return code, nil
}

func parseLine(line string) (x Instr, err error) {
	mnem, rest, _ := strings.Cut(line, " ")

	var args []string
	if rest = strings.TrimSpace(rest); rest != "" {
		args = strings.Split(rest, ",")

		for i := range args {
			args[i] = strings.TrimSpace(args[i])
		}
	}

	want := func(n int) error {
		if len(args) != n {
			return errors.New("%s: %d operands expected, got %d", mnem, n, len(args))
		}

		return nil
	}

	switch mnem {
	case "cqo", "ret":
		if err = want(0); err != nil {
			return nil, err
		}

		if mnem == "cqo" {
			return Cqo{}, nil
		}

		return Ret{}, nil
	case "push", "pop", "idiv":
		if err = want(1); err != nil {
			return nil, err
		}

		if mnem == "push" {
			if v, err := strconv.ParseInt(args[0], 10, 64); err == nil {
				return PushImm{Word: v}, nil
			}
		}

		r, err := ParseReg(args[0])
		if err != nil {
			return nil, err
		}

		switch mnem {
		case "push":
			return Push{In: [1]Reg{r}}, nil
		case "pop":
			return Pop{Out: [1]Reg{r}}, nil
		default:
			return IDiv{In: [1]Reg{r}}, nil
		}
	case "mov":
		if err = want(2); err != nil {
			return nil, err
		}

		r, err := ParseReg(args[0])
		if err != nil {
			return nil, err
		}

		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "mov immediate")
		}

		return MovImm{Out: [1]Reg{r}, Word: v}, nil
	case "add", "sub", "imul", "cmp", "movzb":
		if err = want(2); err != nil {
			return nil, err
		}

		l, err := ParseReg(args[0])
		if err != nil {
			return nil, err
		}

		r, err := ParseReg(args[1])
		if err != nil {
			return nil, err
		}

		switch mnem {
		case "add":
			return Add{Out: [1]Reg{l}, In: [1]Reg{r}}, nil
		case "sub":
			return Sub{Out: [1]Reg{l}, In: [1]Reg{r}}, nil
		case "imul":
			return IMul{Out: [1]Reg{l}, In: [1]Reg{r}}, nil
		case "cmp":
			return Cmp{In: [2]Reg{l, r}}, nil
		default:
			return Movzb{Out: [1]Reg{l}, In: [1]Reg{r}}, nil
		}
	case "sete", "setne", "setl", "setle":
		if err = want(1); err != nil {
			return nil, err
		}

		r, err := ParseReg(args[0])
		if err != nil {
			return nil, err
		}

		return Set{Cond: Cond(mnem[len("set"):]), Out: [1]Reg{r}}, nil
	default:
		return nil, errors.New("unsupported mnemonic: %q", mnem)
	}
}

func ParseReg(s string) (Reg, error) {
	for r, n := range regNames {
		if n == s {
			return Reg(r), nil
		}
	}

	return 0, errors.New("unsupported register: %q", s)
}

func (r Reg) String() string {
	if r < 0 || int(r) >= len(regNames) {
		return "r?"
	}

	return regNames[r]
}

// Base is the full width register r is part of.
func (r Reg) Base() Reg {
	if r == AL {
		return RAX
	}

	return r
}

// Size is the register width in bytes.
func (r Reg) Size() int {
	if r == AL {
		return 1
	}

	return 8
}
