package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/tak-ka3/9cc/compiler/diag"
)

func TestTokenize(t *testing.T) {
	text := []byte(" 12+(3 <= 45)\t!=6")

	toks, err := Tokenize(context.Background(), text)
	require.NoError(t, err)

	type tk struct {
		Kind Kind
		Text string
		Pos  int
	}

	var got []tk
	for _, tok := range toks {
		got = append(got, tk{tok.Kind, string(tok.Text(text)), tok.Pos})
	}

	assert.Equal(t, []tk{
		{Num, "12", 1},
		{Punct, "+", 3},
		{Punct, "(", 4},
		{Num, "3", 5},
		{Punct, "<=", 7},
		{Num, "45", 10},
		{Punct, ")", 12},
		{Punct, "!=", 14},
		{Num, "6", 16},
		{EOF, "", 17},
	}, got)

	assert.Equal(t, int64(12), toks[0].Val)
	assert.Equal(t, int64(45), toks[5].Val)
}

func TestTokenizeGreedy(t *testing.T) {
	text := []byte("1<=2>=3==4<5>6")

	toks, err := Tokenize(context.Background(), text)
	require.NoError(t, err)

	var ops []string
	for _, tok := range toks {
		if tok.Kind == Punct {
			ops = append(ops, string(tok.Text(text)))
		}
	}

	assert.Equal(t, []string{"<=", ">=", "==", "<", ">"}, ops)
}

func TestTokenizeEmpty(t *testing.T) {
	toks, err := Tokenize(context.Background(), []byte(" \n\t"))
	require.NoError(t, err)

	require.Len(t, toks, 1)
	assert.Equal(t, Token{Kind: EOF, Pos: 3, End: 3}, toks[0])
}

func TestTokenizeErrors(t *testing.T) {
	for _, tc := range []struct {
		In  string
		Pos int
		Msg string
	}{
		{In: "1+@", Pos: 2, Msg: "invalid token"},
		{In: "a", Pos: 0, Msg: "invalid token"},
		{In: "1 = 2", Pos: 2, Msg: "invalid token"},
		{In: "12 99999999999999999999", Pos: 3, Msg: "integer literal out of range"},
	} {
		_, err := Tokenize(context.Background(), []byte(tc.In))

		var d *diag.Error
		if assert.True(t, errors.As(err, &d), "%q: %v", tc.In, err) {
			assert.Equal(t, diag.TokenizeError, d.Kind, "%q", tc.In)
			assert.Equal(t, tc.Pos, d.Pos, "%q", tc.In)
			assert.Equal(t, tc.Msg, d.Msg, "%q", tc.In)
		}
	}
}

func TestSpaces(t *testing.T) {
	s := NewSpaces(' ', '\t')

	assert.True(t, s.Is(' '))
	assert.False(t, s.Is('\n'))
	assert.False(t, s.Is('a'))
	assert.Equal(t, 3, s.Skip([]byte("  \tx"), 0))
	assert.Equal(t, 4, SpaceAll.Skip([]byte("\v\f\r\nx"), 0))
}
