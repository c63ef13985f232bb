package ast

type (
	Node interface {
	}

	// Base is the source span of a node.
	Base struct {
		Pos int
		End int
	}

	Int struct {
		Base `tlog:",embed"`

		Value int64
	}

	BinOp struct {
		Base `tlog:",embed"`

		Op    Op
		Left  Node
		Right Node
	}

	Op int
)

const (
	Add Op = iota
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
)

var opText = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Eq:  "==",
	Ne:  "!=",
	Lt:  "<",
	Le:  "<=",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opText) {
		return "?"
	}

	return opText[op]
}

// Span returns the source span of any node.
func Span(x Node) Base {
	switch x := x.(type) {
	case Int:
		return x.Base
	case BinOp:
		return x.Base
	default:
		return Base{}
	}
}
