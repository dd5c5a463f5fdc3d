package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellTruncates(t *testing.T) {
	c := NewCell(4)
	assert.Equal(t, c.Get(), uint64(0))

	old := c.Set(0x5)
	assert.Equal(t, old, uint64(0))
	assert.Equal(t, c.Get(), uint64(0x5))

	old = c.Set(0x1f) // only the low nibble survives
	assert.Equal(t, old, uint64(0x5))
	assert.Equal(t, c.Get(), uint64(0xf))
}

func TestSetGetWraps(t *testing.T) {
	m := New(4, 256)

	m.Set(3, 0xa)
	assert.Equal(t, m.Get(3), uint64(0xa))
	assert.Equal(t, m.Get(3+256), uint64(0xa))
	assert.Equal(t, m.Get(3+512), uint64(0xa))

	m.Set(256, 0x7) // wraps to 0
	assert.Equal(t, m.Get(0), uint64(0x7))

	m.Set(-1, 0x2) // negative addresses reduce too
	assert.Equal(t, m.Get(255), uint64(0x2))

	m.Set(5, 0x123) // truncated to one block
	assert.Equal(t, m.Get(5), uint64(0x3))
}

func TestClear(t *testing.T) {
	m := New(4, 16)
	for p := range 16 {
		m.Set(p, 0xf)
	}
	m.Clear()
	for p := range 16 {
		assert.Equal(t, m.Get(p), uint64(0))
	}
}

func TestLoadRead(t *testing.T) {
	m := New(4, 256)

	err := m.Load(0, "2105")
	assert.NoError(t, err)
	assert.Equal(t, m.Get(0), uint64(0x2))
	assert.Equal(t, m.Get(1), uint64(0x1))
	assert.Equal(t, m.Get(2), uint64(0x0))
	assert.Equal(t, m.Get(3), uint64(0x5))

	// round trip, including upper-case normalisation
	assert.NoError(t, m.Load(8, "DEADBEEF"))
	assert.Equal(t, m.Read(8, 16), "deadbeef")

	// wrap-around load and read
	assert.NoError(t, m.Load(254, "abcd"))
	assert.Equal(t, m.Get(254), uint64(0xa))
	assert.Equal(t, m.Get(255), uint64(0xb))
	assert.Equal(t, m.Get(0), uint64(0xc))
	assert.Equal(t, m.Get(1), uint64(0xd))
	assert.Equal(t, m.Read(254, 2), "abcd")

	// empty range
	assert.Equal(t, m.Read(7, 7), "")
}

func TestLoadBadHexChar(t *testing.T) {
	m := New(4, 256)
	err := m.Load(0, "21g5")
	assert.ErrorIs(t, err, ErrBadHexChar)

	// blocks before the bad character were already written
	assert.Equal(t, m.Get(0), uint64(0x2))
	assert.Equal(t, m.Get(1), uint64(0x1))
	assert.Equal(t, m.Get(2), uint64(0))
}

func TestWideBlocks(t *testing.T) {
	// blockSize 8: two hex digits per block
	m := New(8, 16)

	assert.NoError(t, m.Load(0, "1f2e"))
	assert.Equal(t, m.Get(0), uint64(0x1f))
	assert.Equal(t, m.Get(1), uint64(0x2e))

	assert.Equal(t, m.Hex(0x1f), "1f")
	assert.Equal(t, m.Hex(0x05), "05")

	// Read emits each block with unpadded %x, even for wide blocks
	assert.Equal(t, m.Read(0, 2), "1f2e")

	assert.Panics(t, func() { _ = m.Load(0, "123") }) // fractional block
}

type recorder struct {
	changes []CellChange
}

func (r *recorder) CellChanged(ch CellChange) { r.changes = append(r.changes, ch) }

func TestObserver(t *testing.T) {
	m := New(4, 16)
	rec := &recorder{}
	m.Subscribe(rec)

	m.Set(2, 0x9)
	m.Set(2, 0x4)

	assert.Equal(t, rec.changes, []CellChange{
		{Addr: 2, Old: 0, New: 0x9},
		{Addr: 2, Old: 0x9, New: 0x4},
	})

	rec.changes = nil
	m.Clear()
	assert.Len(t, rec.changes, 16)
	assert.Equal(t, rec.changes[2], CellChange{Addr: 2, Old: 0x4, New: 0})
}
