package diag

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	Kind int

	// Error is a compile time failure bound to a byte offset of the input.
	Error struct {
		Kind Kind
		Pos  int
		Msg  string

		From loc.PC
	}
)

const (
	TokenizeError Kind = iota
	ParseError
)

// Evaluation faults. They are never raised by the compiler itself,
// only by the evaluator and the machine running the emitted code.
var (
	ErrDivideByZero   = errors.New("division by zero")
	ErrDivideOverflow = errors.New("division overflow")
)

func Tokenize(pos int, format string, args ...any) *Error {
	return &Error{
		Kind: TokenizeError,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
		From: loc.Caller(1),
	}
}

func Parse(pos int, format string, args ...any) *Error {
	return &Error{
		Kind: ParseError,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
		From: loc.Caller(1),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at %d: %s", e.Kind, e.Pos, e.Msg)
}

// Report writes err the way the compiler prints it before exiting:
// the input line, then a caret under the failing column followed by the message.
// Multi-line input is cut down to the line holding the error.
// Padding repeats the input's tabs so the caret lines up in a terminal.
// Errors without a position are printed as a single line.
func Report(w io.Writer, src []byte, err error) error {
	var d *Error
	if !errors.As(err, &d) {
		_, err = fmt.Fprintf(w, "%v\n", err)
		return err
	}

	pos := d.Pos
	if pos > len(src) {
		pos = len(src)
	}

	st := bytes.LastIndexByte(src[:pos], '\n') + 1

	line := src[st:]
	if end := bytes.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}

	b := make([]byte, 0, 2*len(line)+len(d.Msg)+4)
	b = append(b, line...)
	b = append(b, '\n')

	for _, c := range src[st:pos] {
		if c == '\t' {
			b = append(b, '\t')
		} else {
			b = append(b, ' ')
		}
	}

	b = hfmt.Appendf(b, "^ %s\n", d.Msg)

	_, err = w.Write(b)

	return err
}

func (k Kind) String() string {
	switch k {
	case TokenizeError:
		return "tokenize error"
	case ParseError:
		return "parse error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
