// Package cpu implements the machine's fetch/execute engine: a register
// file, four special registers, and sixteen opcodes over a shared memory.

package cpu

import (
	"nic/bit"
	"nic/mem"
)

// Status codes held in the sr register after each half-step. Anything
// other than Success stops a free-running machine.
const (
	Success uint64 = iota
	Halted
	BadInstruction
	BadAlignment
	Interrupted
)

// Next-move codes held in the nr register: what the next Step will do.
const (
	Fetch uint64 = iota
	Exec
)

var statusNames = []string{"OK", "HALT", "BAD INSTR", "BAD ALIGN", "INTERRUPTED"}
var moveNames = []string{"FETCH", "EXEC"}

// StatusName returns a short human-readable label for a status code.
func StatusName(s uint64) string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "?"
}

// MoveName returns a short human-readable label for a next-move code.
func MoveName(m uint64) string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return "?"
}

// The Processor has no storage of its own beyond its registers; it reads
// and writes a Memory owned by the surrounding computer.
//
// A Processor advances in half-steps. A fetch transfers one instruction
// from memory at pc into ir and advances pc; an execute decodes ir and
// carries it out. The nr register remembers which half comes next, and sr
// reports how the last half went. Splitting the cycle keeps every
// intermediate state observable, which is the point of an instructional
// machine.
type Processor struct {
	Geo Geometry
	Mem *mem.Memory

	Regs []*Register // general purpose, word-sized
	PC   *Register   // program counter, word-sized
	IR   *Register   // instruction register
	NR   *Register   // next move: Fetch or Exec
	SR   *Register   // status of the last half-step

	// operand fields of the instruction in ir, decoded at the start of
	// each execute
	op   uint64
	f1   uint64
	f2   uint64
	f3   uint64
	word uint64

	observers []Observer
}

// New wires a Processor to its memory. The geometry must have passed
// Validate; width panics here indicate an unvalidated caller.
func New(geo Geometry, m *mem.Memory) *Processor {
	p := &Processor{Geo: geo, Mem: m}
	p.Regs = make([]*Register, geo.NumRegisters)
	for i := range p.Regs {
		p.Regs[i] = p.newRegister(regName(i), geo.WordSize())
	}
	p.PC = p.newRegister("pc", geo.WordSize())
	p.IR = p.newRegister("ir", geo.InstructionBits())
	p.NR = p.newRegister("nr", geo.BlockSize)
	p.SR = p.newRegister("sr", geo.BlockSize)
	return p
}

func regName(i int) string {
	const digits = "0123456789abcdef"
	if i < len(digits) {
		return "r" + string(digits[i])
	}
	return "r" + string(digits[i/len(digits)]) + string(digits[i%len(digits)])
}

func (p *Processor) newRegister(name string, width int) *Register {
	r := NewRegister(name, width)
	r.onChange = p.notifyReg
	return r
}

// Subscribe registers o for register change notifications. Wire up
// observers before starting the clock.
func (p *Processor) Subscribe(o Observer) {
	p.observers = append(p.observers, o)
}

func (p *Processor) notifyReg(ch RegisterChange) {
	for _, o := range p.observers {
		o.RegisterChanged(ch)
	}
}

// Status returns the sr register: the outcome of the last half-step.
func (p *Processor) Status() uint64 { return p.SR.Get() }

// NextMove returns the nr register: what the next Step will do.
func (p *Processor) NextMove() uint64 { return p.NR.Get() }

// Step performs one half-step, fetch or execute, whichever nr says is
// next. The caller decides how many half-steps to take and at what pace;
// the processor itself never waits.
func (p *Processor) Step() {
	if p.NR.Get() == Fetch {
		p.fetch()
		p.NR.Set(Exec)
	} else {
		p.execute()
		p.NR.Set(Fetch)
	}
}

// Reset zeroes pc, ir, sr and the general file, and arms the next step as
// a fetch. Memory is untouched; clearing it is the computer's job.
func (p *Processor) Reset() {
	for _, r := range p.Regs {
		r.Set(0)
	}
	p.PC.Set(0)
	p.IR.Set(0)
	p.SR.Set(Success)
	p.NR.Set(Fetch)
}

// fetch assembles the instruction at pc into ir and advances pc past it.
// The pc must sit on an instruction boundary; a misaligned pc reports
// BadAlignment and leaves ir and pc alone rather than fetching garbage.
func (p *Processor) fetch() {
	n := p.Geo.InstructionBlocks()
	pc := int(p.PC.Get())
	if pc%n != 0 {
		p.SR.Set(BadAlignment)
		return
	}
	var ir uint64
	for i := range n {
		// first block read lands most-significant
		ir = ir<<p.Geo.BlockSize | p.Mem.Get(pc+i)
	}
	p.IR.Set(ir)
	p.PC.Set(uint64((pc + n) % p.Geo.MemoryCells))
	p.SR.Set(Success)
}

// execute decodes ir and runs the instruction. Operand fields, counted
// from the low end: the word operand fills the low WordBlocks blocks
// (field3 its lowest block, field2 the next), field1 is the block above
// the word, and the opcode sits on top.
func (p *Processor) execute() {
	ir := p.IR.Get()
	bs := p.Geo.BlockSize
	p.f3 = bit.Trunc(ir, bs)
	p.f2 = bit.Trunc(ir>>bs, bs)
	p.f1 = bit.Trunc(ir>>(p.Geo.WordBlocks*bs), bs)
	p.op = bit.Trunc(ir>>((1+p.Geo.WordBlocks)*bs), p.Geo.OpSize())
	p.word = bit.Trunc(ir, p.Geo.WordSize())

	oc, legal := Opcodes[p.op]
	if !legal {
		p.SR.Set(BadInstruction)
		return
	}
	p.SR.Set(Success)
	oc.Exec(p)
}

// reg resolves a register-index field. The geometry guarantees the file
// is addressable by one block; indices are reduced like addresses are.
func (p *Processor) reg(i uint64) *Register {
	return p.Regs[int(i)%p.Geo.NumRegisters]
}

// readWord assembles WordBlocks consecutive blocks starting at addr,
// most-significant block first.
func (p *Processor) readWord(addr int) uint64 {
	var v uint64
	for i := range p.Geo.WordBlocks {
		v = v<<p.Geo.BlockSize | p.Mem.Get(addr+i)
	}
	return v
}

// writeWord stores the blocks of v at addr, most-significant block first.
func (p *Processor) writeWord(addr int, v uint64) {
	for i := range p.Geo.WordBlocks {
		shift := (p.Geo.WordBlocks - 1 - i) * p.Geo.BlockSize
		p.Mem.Set(addr+i, v>>shift)
	}
}
