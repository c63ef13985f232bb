package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler/ast"
	"github.com/tak-ka3/9cc/compiler/diag"
)

type (
	// parser holds the cursor into the token sequence.
	// The cursor only moves forward and only over matched tokens.
	parser struct {
		b    []byte
		toks []Token
		i    int
	}
)

// ParseText tokenizes and parses text.
func ParseText(ctx context.Context, text []byte) (ast.Node, error) {
	toks, err := Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, text, toks)
}

// Parse builds the tree for a single expression.
// toks must end with an EOF token as returned by Tokenize.
func Parse(ctx context.Context, text []byte, toks []Token) (x ast.Node, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "tokens", len(toks))
	defer tr.Finish("err", &err)

	if len(toks) == 0 || toks[len(toks)-1].Kind != EOF {
		return nil, errors.New("token sequence is not terminated")
	}

	p := &parser{
		b:    text,
		toks: toks,
	}

	x, err = p.expr(ctx)
	if err != nil {
		return nil, err
	}

	if t := p.tok(); t.Kind != EOF {
		return nil, diag.Parse(t.Pos, "unexpected trailing token")
	}

	if tr.If("ast") {
		tr.Printw("abstract syntax tree", "x_type", tlog.NextAsType, x, "x", x)
	}

	return x, nil
}

// expr = equality ("+" equality | "-" equality)*
func (p *parser) expr(ctx context.Context) (x ast.Node, err error) {
	x, err = p.equality(ctx)
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Op

		switch {
		case p.consume(ctx, "+"):
			op = ast.Add
		case p.consume(ctx, "-"):
			op = ast.Sub
		default:
			return x, nil
		}

		r, err := p.equality(ctx)
		if err != nil {
			return nil, err
		}

		x = binop(op, x, r)
	}
}

// equality = relational ("==" relational | "!=" relational)*
func (p *parser) equality(ctx context.Context) (x ast.Node, err error) {
	x, err = p.relational(ctx)
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Op

		switch {
		case p.consume(ctx, "=="):
			op = ast.Eq
		case p.consume(ctx, "!="):
			op = ast.Ne
		default:
			return x, nil
		}

		r, err := p.relational(ctx)
		if err != nil {
			return nil, err
		}

		x = binop(op, x, r)
	}
}

// relational = add ("<" add | "<=" add | ">" add | ">=" add)*
//
// a > b and a >= b are stored as b < a and b <= a.
func (p *parser) relational(ctx context.Context) (x ast.Node, err error) {
	x, err = p.add(ctx)
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Op
		var swap bool

		switch {
		case p.consume(ctx, "<="):
			op = ast.Le
		case p.consume(ctx, ">="):
			op, swap = ast.Le, true
		case p.consume(ctx, "<"):
			op = ast.Lt
		case p.consume(ctx, ">"):
			op, swap = ast.Lt, true
		default:
			return x, nil
		}

		r, err := p.add(ctx)
		if err != nil {
			return nil, err
		}

		if swap {
			span := ast.Base{Pos: ast.Span(x).Pos, End: ast.Span(r).End}

			x = ast.BinOp{Base: span, Op: op, Left: r, Right: x}
		} else {
			x = binop(op, x, r)
		}
	}
}

// add = mul ("+" mul | "-" mul)*
func (p *parser) add(ctx context.Context) (x ast.Node, err error) {
	x, err = p.mul(ctx)
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Op

		switch {
		case p.consume(ctx, "+"):
			op = ast.Add
		case p.consume(ctx, "-"):
			op = ast.Sub
		default:
			return x, nil
		}

		r, err := p.mul(ctx)
		if err != nil {
			return nil, err
		}

		x = binop(op, x, r)
	}
}

// mul = unary ("*" unary | "/" unary)*
func (p *parser) mul(ctx context.Context) (x ast.Node, err error) {
	x, err = p.unary(ctx)
	if err != nil {
		return nil, err
	}

	for {
		var op ast.Op

		switch {
		case p.consume(ctx, "*"):
			op = ast.Mul
		case p.consume(ctx, "/"):
			op = ast.Div
		default:
			return x, nil
		}

		r, err := p.unary(ctx)
		if err != nil {
			return nil, err
		}

		x = binop(op, x, r)
	}
}

// unary = ("+" | "-")? primary
func (p *parser) unary(ctx context.Context) (x ast.Node, err error) {
	st := p.tok().Pos

	if p.consume(ctx, "+") {
		return p.primary(ctx)
	}

	if p.consume(ctx, "-") {
		x, err = p.primary(ctx)
		if err != nil {
			return nil, err
		}

		zero := ast.Int{Base: ast.Base{Pos: st, End: st}}

		return ast.BinOp{
			Base:  ast.Base{Pos: st, End: ast.Span(x).End},
			Op:    ast.Sub,
			Left:  zero,
			Right: x,
		}, nil
	}

	return p.primary(ctx)
}

// primary = "(" expr ")" | num
func (p *parser) primary(ctx context.Context) (x ast.Node, err error) {
	if p.consume(ctx, "(") {
		x, err = p.expr(ctx)
		if err != nil {
			return nil, err
		}

		err = p.expect(ctx, ")")
		if err != nil {
			return nil, err
		}

		return x, nil
	}

	t := p.tok()

	v, err := p.expectNumber(ctx)
	if err != nil {
		return nil, err
	}

	return ast.Int{
		Base:  ast.Base{Pos: t.Pos, End: t.End},
		Value: v,
	}, nil
}

func (p *parser) tok() Token {
	return p.toks[p.i]
}

// consume advances over the current token if it is the punctuator op.
func (p *parser) consume(ctx context.Context, op string) (ok bool) {
	if tr := tlog.SpanFromContext(ctx); tr.If("consume") {
		defer func(i int) {
			tr.Printw("consume", "op", op, "i", i, "ok", ok, "from", loc.Callers(1, 3))
		}(p.i)
	}

	if !p.tok().Is(p.b, op) {
		return false
	}

	p.i++

	return true
}

func (p *parser) expect(ctx context.Context, op string) error {
	if !p.consume(ctx, op) {
		return diag.Parse(p.tok().Pos, "expected %q", op)
	}

	return nil
}

func (p *parser) expectNumber(ctx context.Context) (int64, error) {
	t := p.tok()

	if t.Kind != Num {
		return 0, diag.Parse(t.Pos, "expected a number")
	}

	p.i++

	return t.Val, nil
}

func binop(op ast.Op, l, r ast.Node) ast.BinOp {
	return ast.BinOp{
		Base:  ast.Base{Pos: ast.Span(l).Pos, End: ast.Span(r).End},
		Op:    op,
		Left:  l,
		Right: r,
	}
}
