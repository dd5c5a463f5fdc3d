package cpu

import "nic/bit"

// One method per opcode. The decoded operand fields are passed implicitly
// via p.f1/f2/f3/p.word, not as func args; execute() fills them in right
// before the call.
//
// Field use by shape:
//
//	word shape      [op][f1=reg][f2 f3=word]    LDM LDC STM ADI JMP
//	two-reg shape   [op][  --  ][f2=a][f3=b]    LDR STR MOV
//	three-reg shape [op][f1=d  ][f2=a][f3=b]    ADD MUL SUB SHF AND ORR XOR
//
// Every result is truncated to the word width by Register.Set; arithmetic
// is carried out wide and wrapped, never checked.

// HLT - Halt
func (p *Processor) halt() {
	p.SR.Set(Halted)
}

// LDM - Load from memory. reg[f1] := word at address p.word.
func (p *Processor) loadMem() {
	p.load(p.reg(p.f1), int(p.word))
}

// LDC - Load constant. reg[f1] := p.word.
func (p *Processor) loadConst() {
	p.reg(p.f1).Set(p.word)
}

// LDR - Load via register. reg[f2] := word at address reg[f3].
func (p *Processor) loadReg() {
	p.load(p.reg(p.f2), int(p.reg(p.f3).Get()))
}

// load is LDM/LDR's common tail: a word read with an alignment check.
// Words live on WordBlocks boundaries; an odd address is reported, not
// rounded.
func (p *Processor) load(dst *Register, addr int) {
	if addr%p.Geo.WordBlocks != 0 {
		p.SR.Set(BadAlignment)
		return
	}
	dst.Set(p.readWord(addr))
}

// STM - Store to memory. Word at address p.word := reg[f1].
func (p *Processor) store() {
	p.storeAt(p.reg(p.f1), int(p.word))
}

// STR - Store via register. Word at address reg[f3] := reg[f2].
func (p *Processor) storeReg() {
	p.storeAt(p.reg(p.f2), int(p.reg(p.f3).Get()))
}

func (p *Processor) storeAt(src *Register, addr int) {
	if addr%p.Geo.WordBlocks != 0 {
		p.SR.Set(BadAlignment)
		return
	}
	p.writeWord(addr, src.Get())
}

// MOV - Move. reg[f3] := reg[f2].
func (p *Processor) move() {
	p.reg(p.f3).Set(p.reg(p.f2).Get())
}

// ADD - Integer add. reg[f1] := reg[f2] + reg[f3].
func (p *Processor) addInt() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() + p.reg(p.f3).Get())
}

// ADI - Add immediate. reg[f1] := reg[f1] + p.word.
func (p *Processor) addConst() {
	r := p.reg(p.f1)
	r.Set(r.Get() + p.word)
}

// MUL - Integer multiply. reg[f1] := reg[f2] * reg[f3].
func (p *Processor) mulInt() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() * p.reg(p.f3).Get())
}

// SUB - Integer subtract. reg[f1] := reg[f2] - reg[f3].
func (p *Processor) subInt() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() - p.reg(p.f3).Get())
}

// SHF - Shift. The shift amount is reg[f3] read as a signed word: a
// positive amount shifts reg[f2] arithmetically right, a negative amount
// shifts it logically left by the magnitude. Zero takes the left branch
// and shifts by nothing.
func (p *Processor) shift() {
	w := p.Geo.WordSize()
	t := bit.SignExtend(p.reg(p.f3).Get(), w)
	var v uint64
	if t > 0 {
		// sign fill from the top; Go's >> on a signed operand is
		// arithmetic for any shift count
		v = uint64(bit.SignExtend(p.reg(p.f2).Get(), w) >> uint64(t))
	} else {
		n := uint64(-t)
		if n >= 64 {
			v = 0
		} else {
			v = p.reg(p.f2).Get() << n
		}
	}
	p.reg(p.f1).Set(v)
}

// AND - Bitwise and. reg[f1] := reg[f2] & reg[f3].
func (p *Processor) and() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() & p.reg(p.f3).Get())
}

// ORR - Bitwise or. reg[f1] := reg[f2] | reg[f3].
func (p *Processor) or() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() | p.reg(p.f3).Get())
}

// XOR - Bitwise exclusive or. reg[f1] := reg[f2] ^ reg[f3].
func (p *Processor) xor() {
	p.reg(p.f1).Set(p.reg(p.f2).Get() ^ p.reg(p.f3).Get())
}

// JMP - Conditional jump. The word operand carries the target in its high
// bits and the condition in its low two: 0 jump if reg[f1] = r0, 1 if
// not equal, 2 if less than, 3 if less or equal. Comparisons are signed,
// reg[f1] on the left. The target keeps its low two bits cleared, which
// also keeps it instruction-aligned for the default geometry.
func (p *Processor) jump() {
	w := p.Geo.WordSize()
	mode := p.word % 4
	target := p.word &^ 3

	r := bit.SignExtend(p.reg(p.f1).Get(), w)
	z := bit.SignExtend(p.Regs[0].Get(), w)

	var taken bool
	switch mode {
	case 0:
		taken = r == z
	case 1:
		taken = r != z
	case 2:
		taken = r < z
	case 3:
		taken = r <= z
	}
	if taken {
		p.PC.Set(target)
	}
}
