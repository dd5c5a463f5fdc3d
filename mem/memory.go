// Package mem implements the machine's random-access memory: a fixed
// array of Cells addressed modulo its length, with helpers for loading
// and reading back hexadecimal block images.

package mem

import (
	"errors"
	"fmt"
	"strings"

	"nic/bit"
)

// ErrBadHexChar reports a non-hexadecimal character in a block image.
var ErrBadHexChar = errors.New("bad hex char")

// Memory is an ordered sequence of Cells. Every address is reduced modulo
// the cell count before use, so there is no such thing as an out-of-range
// access; programs that run off either end simply wrap.
type Memory struct {
	blockSize int // bits per cell
	hexSize   int // hex digits per cell (blockSize/4)
	cells     []*Cell

	observers []Observer
}

// New creates a zeroed Memory of cells blocks of blockSize bits each.
// The parameters come from a validated Geometry; violations here are
// programmer errors.
func New(blockSize, cells int) *Memory {
	if blockSize < 4 || blockSize%4 != 0 {
		panic("Invalid block size provided -- must be a positive multiple of 4.")
	}
	if cells < 1 {
		panic("Invalid cell count provided -- must be positive.")
	}
	m := &Memory{
		blockSize: blockSize,
		hexSize:   blockSize / 4,
		cells:     make([]*Cell, cells),
	}
	for i := range m.cells {
		m.cells[i] = NewCell(blockSize)
	}
	return m
}

func (m *Memory) Len() int       { return len(m.cells) }
func (m *Memory) BlockSize() int { return m.blockSize }
func (m *Memory) HexSize() int   { return m.hexSize }

// index reduces an address modulo the cell count. Addresses may come from
// register values that were sign-extended somewhere along the way, so
// negative inputs reduce like everything else.
func (m *Memory) index(p int) int {
	p %= len(m.cells)
	if p < 0 {
		p += len(m.cells)
	}
	return p
}

// Get returns the block stored at address p mod Len.
func (m *Memory) Get(p int) uint64 {
	return m.cells[m.index(p)].Get()
}

// Set writes the low blockSize bits of v to address p mod Len.
func (m *Memory) Set(p int, v uint64) {
	p = m.index(p)
	old := m.cells[p].Set(v)
	m.notify(CellChange{Addr: p, Old: old, New: m.cells[p].Get()})
}

// Clear zeroes every cell.
func (m *Memory) Clear() {
	for p := range m.cells {
		old := m.cells[p].Set(0)
		m.notify(CellChange{Addr: p, Old: old, New: 0})
	}
}

// Load writes the block image s to consecutive addresses starting at p.
// Each group of hexSize digits forms one block, most-significant digit
// first. The image length must be a whole number of blocks; a fractional
// block is a bug in the caller. A non-hex character fails the load, with
// any blocks before it already written.
func (m *Memory) Load(p int, s string) error {
	if len(s)%m.hexSize != 0 {
		panic("Invalid image provided -- length must be a multiple of the block hex size.")
	}
	for i := 0; i < len(s); i += m.hexSize {
		var block uint64
		for _, r := range s[i : i+m.hexSize] {
			d, ok := hexDigit(r)
			if !ok {
				return fmt.Errorf("%w: %q at offset %d", ErrBadHexChar, r, i)
			}
			block = block<<4 | d
		}
		m.Set(p+i/m.hexSize, block)
	}
	return nil
}

// Read returns the blocks from address p (inclusive) to q (exclusive),
// scanning forward and wrapping if needed, as a hex string.
//
// Each block is emitted with %x and no zero padding, regardless of
// hexSize. For blockSize 4 this is exact; for wider blocks it is
// ambiguous (0x01 prints as "1"), but it is what existing program images
// and their output checks were written against, so it is kept.
func (m *Memory) Read(p, q int) string {
	p, q = m.index(p), m.index(q)
	var sb strings.Builder
	for ; p != q; p = m.index(p + 1) {
		fmt.Fprintf(&sb, "%x", m.cells[p].Get())
	}
	return sb.String()
}

func hexDigit(r rune) (uint64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint64(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint64(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return uint64(r-'A') + 10, true
	}
	return 0, false
}

// Hex formats one block as hexSize digits, most-significant first. The
// inverse of one Load group; Read deliberately does not use it (see Read).
func (m *Memory) Hex(block uint64) string {
	return fmt.Sprintf("%0*x", m.hexSize, bit.Trunc(block, m.blockSize))
}
