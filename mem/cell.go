package mem

import (
	"sync"

	"nic/bit"
)

// A Cell is the machine's fundamental unit of storage: an unsigned value
// that is truncated to width bits on every write. The analogue of a byte,
// except the width is a machine parameter rather than 8.
//
// Each Cell carries its own lock, so a read or write of one location is
// atomic with respect to any other access of the same location. Observers
// watching a running machine may see any interleaving of whole values, but
// never a torn one.
type Cell struct {
	mu    sync.Mutex
	width int
	value uint64
}

func NewCell(width int) *Cell {
	_ = bit.Mask(width) // reject nonsense widths up front
	return &Cell{width: width}
}

// Get returns the current value. Always in [0, 1<<width).
func (c *Cell) Get() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores the low width bits of v and returns the value it replaced.
func (c *Cell) Set(v uint64) (old uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old = c.value
	c.value = bit.Trunc(v, c.width)
	return old
}

func (c *Cell) Width() int { return c.width }
