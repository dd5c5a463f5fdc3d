package mem

// A CellChange describes one completed write to one memory location.
type CellChange struct {
	Addr int
	Old  uint64
	New  uint64
}

// An Observer is told about every memory write. Observers are passive:
// they must not call back into mutating operations, and they run on
// whichever goroutine performed the write.
type Observer interface {
	CellChanged(ch CellChange)
}

// Subscribe registers o for change notifications. Not safe to call while
// the machine is running; wire up observers before starting the clock.
func (m *Memory) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

func (m *Memory) notify(ch CellChange) {
	for _, o := range m.observers {
		o.CellChanged(ch)
	}
}
