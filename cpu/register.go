package cpu

import (
	"sync"

	"nic/bit"
)

// A Register is a named, width-truncating value container. The general
// file holds word-sized registers; pc, ir, nr and sr have their own
// widths. Like a memory Cell, each Register locks itself, so concurrent
// observers see whole values only.
type Register struct {
	mu       sync.Mutex
	name     string
	width    int
	value    uint64
	onChange func(RegisterChange)
}

// A RegisterChange describes one completed write to one register.
type RegisterChange struct {
	Name string
	Old  uint64
	New  uint64
}

// An Observer is told about every register write. Observers are passive
// and must not call back into the processor.
type Observer interface {
	RegisterChanged(ch RegisterChange)
}

func NewRegister(name string, width int) *Register {
	_ = bit.Mask(width)
	return &Register{name: name, width: width}
}

// Get returns the current value. Always in [0, 1<<width).
func (r *Register) Get() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Set stores the low width bits of v and returns the value it replaced.
func (r *Register) Set(v uint64) (old uint64) {
	r.mu.Lock()
	old = r.value
	r.value = bit.Trunc(v, r.width)
	v = r.value
	notify := r.onChange
	r.mu.Unlock()

	if notify != nil {
		notify(RegisterChange{Name: r.name, Old: old, New: v})
	}
	return old
}

func (r *Register) Name() string { return r.name }
func (r *Register) Width() int   { return r.width }
