package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"
)

func TestReport(t *testing.T) {
	var b bytes.Buffer

	err := Report(&b, []byte("1+@"), Tokenize(2, "invalid token"))
	require.NoError(t, err)

	assert.Equal(t, "1+@\n  ^ invalid token\n", b.String())

	b.Reset()

	err = Report(&b, []byte("1+(2*3"), errors.Wrap(Parse(6, "expected %q", ")"), "parse text"))
	require.NoError(t, err)

	assert.Equal(t, "1+(2*3\n      ^ expected \")\"\n", b.String())
}

func TestReportColumnZero(t *testing.T) {
	var b bytes.Buffer

	err := Report(&b, []byte("*1"), Parse(0, "expected a number"))
	require.NoError(t, err)

	assert.Equal(t, "*1\n^ expected a number\n", b.String())
}

func TestReportPlain(t *testing.T) {
	var b bytes.Buffer

	err := Report(&b, []byte("1"), errors.New("invalid number of arguments"))
	require.NoError(t, err)

	assert.Equal(t, "invalid number of arguments\n", b.String())
}

func TestError(t *testing.T) {
	e := Parse(3, "expected %q", ")")

	assert.Equal(t, ParseError, e.Kind)
	assert.Equal(t, `parse error at 3: expected ")"`, e.Error())
	assert.NotZero(t, e.From)

	assert.Equal(t, "tokenize error", TokenizeError.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestReportTabs(t *testing.T) {
	var b bytes.Buffer

	err := Report(&b, []byte("1\t+@"), Tokenize(3, "invalid token"))
	require.NoError(t, err)

	assert.Equal(t, "1\t+@\n \t ^ invalid token\n", b.String())
}

func TestReportMultiline(t *testing.T) {
	var b bytes.Buffer

	err := Report(&b, []byte("1+\n2*@\n+3"), Tokenize(5, "invalid token"))
	require.NoError(t, err)

	assert.Equal(t, "2*@\n  ^ invalid token\n", b.String())

	b.Reset()

	err = Report(&b, []byte("1+\n"), Parse(3, "expected a number"))
	require.NoError(t, err)

	assert.Equal(t, "\n^ expected a number\n", b.String())
}
