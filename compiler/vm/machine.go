package vm

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/tak-ka3/9cc/compiler/asm"
	"github.com/tak-ka3/9cc/compiler/diag"
)

var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackImbalance = errors.New("stack imbalance")
	ErrNoCompare      = errors.New("set without preceding cmp")
)

const StackDepth = 1 << 20

type (
	// Machine executes the instruction subset the code generator emits.
	// Registers are 64 bits wide; AL aliases the low byte of RAX.
	Machine struct {
		Regs  [3]int64 // RAX, RDI, RDX
		Stack []int64

		// operands of the last cmp
		cmpL, cmpR int64
		cmpOK      bool

		IP int
	}
)

// Run executes code on a fresh machine.
// The result is RAX at ret, or the single value left on the stack
// when code ends without ret.
func Run(ctx context.Context, code []asm.Instr) (res int64, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm: run", "instrs", len(code))
	defer tr.Finish("err", &err)

	var m Machine

	return m.Run(ctx, code)
}

func (m *Machine) Reset() {
	m.Regs = [3]int64{}
	m.Stack = m.Stack[:0]
	m.cmpOK = false
	m.IP = 0
}

func (m *Machine) Run(ctx context.Context, code []asm.Instr) (int64, error) {
	tr := tlog.SpanFromContext(ctx)

	for m.IP = 0; m.IP < len(code); m.IP++ {
		x := code[m.IP]

		if tr.If("vm_step") {
			tr.Printw("step", "ip", m.IP, "typ", tlog.NextAsType, x, "instr", x, "regs", m.Regs, "depth", len(m.Stack))
		}

		if _, ok := x.(asm.Ret); ok {
			return m.Regs[asm.RAX], nil
		}

		err := m.Step(x)
		if err != nil {
			return 0, errors.Wrap(err, "ip %d", m.IP)
		}
	}

	if len(m.Stack) != 1 {
		return 0, errors.Wrap(ErrStackImbalance, "%d values left", len(m.Stack))
	}

	return m.Pop()
}

// Step executes a single non control flow instruction.
func (m *Machine) Step(x asm.Instr) (err error) {
	switch x := x.(type) {
	case asm.PushImm:
		return m.Push(x.Word)
	case asm.Push:
		return m.Push(m.Get(x.In[0]))
	case asm.Pop:
		v, err := m.Pop()
		if err != nil {
			return err
		}

		m.Put(x.Out[0], v)
	case asm.MovImm:
		m.Put(x.Out[0], x.Word)
	case asm.Add:
		m.Put(x.Out[0], m.Get(x.Out[0])+m.Get(x.In[0]))
	case asm.Sub:
		m.Put(x.Out[0], m.Get(x.Out[0])-m.Get(x.In[0]))
	case asm.IMul:
		m.Put(x.Out[0], m.Get(x.Out[0])*m.Get(x.In[0]))
	case asm.Cqo:
		m.Regs[asm.RDX] = m.Regs[asm.RAX] >> 63
	case asm.IDiv:
		return m.idiv(m.Get(x.In[0]))
	case asm.Cmp:
		m.cmpL, m.cmpR, m.cmpOK = m.Get(x.In[0]), m.Get(x.In[1]), true
	case asm.Set:
		if !m.cmpOK {
			return ErrNoCompare
		}

		var v bool

		switch x.Cond {
		case asm.Equal:
			v = m.cmpL == m.cmpR
		case asm.NotEqual:
			v = m.cmpL != m.cmpR
		case asm.Less:
			v = m.cmpL < m.cmpR
		case asm.LessOrEqual:
			v = m.cmpL <= m.cmpR
		default:
			return errors.New("unsupported condition: %q", x.Cond)
		}

		var b int64
		if v {
			b = 1
		}

		m.Put(x.Out[0], b)
	case asm.Movzb:
		m.Put(x.Out[0], int64(uint8(m.Get(x.In[0]))))
	default:
		return errors.New("unsupported instruction: %T", x)
	}

	return nil
}

// idiv only supports the cqo-extended 64-bit dividend the generator produces.
func (m *Machine) idiv(d int64) error {
	a := m.Regs[asm.RAX]

	if m.Regs[asm.RDX] != a>>63 {
		return errors.New("idiv: rdx is not the sign extension of rax")
	}

	if d == 0 {
		return diag.ErrDivideByZero
	}

	if d == -1 && a == -1<<63 {
		return diag.ErrDivideOverflow
	}

	m.Regs[asm.RAX] = a / d
	m.Regs[asm.RDX] = a % d

	return nil
}

// Get reads r. Narrow registers read the low bytes of their base register.
func (m *Machine) Get(r asm.Reg) int64 {
	v := m.Regs[r.Base()]

	if r.Size() == 1 {
		v = int64(uint8(v))
	}

	return v
}

// Put writes r. Narrow registers keep the upper bytes of their base register.
func (m *Machine) Put(r asm.Reg, v int64) {
	if r.Size() == 1 {
		base := &m.Regs[r.Base()]
		*base = *base&^0xff | int64(uint8(v))

		return
	}

	m.Regs[r] = v
}

func (m *Machine) Push(v int64) error {
	if len(m.Stack) >= StackDepth {
		return ErrStackOverflow
	}

	m.Stack = append(m.Stack, v)

	return nil
}

func (m *Machine) Pop() (int64, error) {
	if len(m.Stack) == 0 {
		return 0, ErrStackUnderflow
	}

	v := m.Stack[len(m.Stack)-1]
	m.Stack = m.Stack[:len(m.Stack)-1]

	return v, nil
}
