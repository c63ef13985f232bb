package front

import (
	"bytes"
	"context"
	"fmt"

	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/tak-ka3/9cc/compiler/diag"
)

type (
	Kind int

	// Token is one lexical unit. Pos and End are byte offsets into the input.
	// Val is meaningful for Num tokens only.
	Token struct {
		Kind Kind
		Val  int64
		Pos  int
		End  int
	}
)

const (
	Punct Kind = iota
	Num
	EOF
)

var (
	puncts2 = [][]byte{[]byte("=="), []byte("!="), []byte("<="), []byte(">=")}
	puncts1 = []byte("+-*/()<>")
)

func Tokenize(ctx context.Context, text []byte) (toks []Token, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "tokenize", "size", len(text))
	defer tr.Finish("err", &err)

	i := 0

loop:
	for {
		i = SpaceAll.Skip(text, i)

		if i == len(text) {
			break
		}

		for _, p := range puncts2 {
			if bytes.HasPrefix(text[i:], p) {
				toks = append(toks, Token{Kind: Punct, Pos: i, End: i + 2})
				i += 2

				continue loop
			}
		}

		c := text[i]

		if bytes.IndexByte(puncts1, c) >= 0 {
			toks = append(toks, Token{Kind: Punct, Pos: i, End: i + 1})
			i++

			continue
		}

		if isDigit(c) {
			var t Token

			t, err = tokenizeNum(text, i)
			if err != nil {
				return nil, err
			}

			toks = append(toks, t)
			i = t.End

			continue
		}

		return nil, diag.Tokenize(i, "invalid token")
	}

	toks = append(toks, Token{Kind: EOF, Pos: i, End: i})

	if tr.If("tokens") {
		for j, t := range toks {
			tr.Printw("token", "j", j, "tok", t, "text", t.Text(text))
		}
	}

	return toks, nil
}

func tokenizeNum(b []byte, st int) (t Token, err error) {
	const maxInt = 1<<63 - 1

	var v int64

	i := st
	for i < len(b) && isDigit(b[i]) {
		d := int64(b[i] - '0')

		if v > (maxInt-d)/10 {
			return t, diag.Tokenize(st, "integer literal out of range")
		}

		v = v*10 + d
		i++
	}

	return Token{
		Kind: Num,
		Val:  v,
		Pos:  st,
		End:  i,
	}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (t Token) Text(src []byte) []byte {
	return src[t.Pos:t.End]
}

// Is reports whether t is the punctuator op.
func (t Token) Is(src []byte, op string) bool {
	return t.Kind == Punct && string(t.Text(src)) == op
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if t.Kind != Num {
		b = e.AppendMap(b, 3)
	} else {
		b = e.AppendMap(b, 4)
	}

	b = e.AppendKeyString(b, "kind", t.Kind.String())
	b = e.AppendKeyInt(b, "pos", t.Pos)
	b = e.AppendKeyInt(b, "end", t.End)

	if t.Kind == Num {
		b = e.AppendKeyInt64(b, "val", t.Val)
	}

	return b
}

func (k Kind) String() string {
	switch k {
	case Punct:
		return "punct"
	case Num:
		return "num"
	case EOF:
		return "eof"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
