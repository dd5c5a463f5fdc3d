package computer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"nic/cpu"
	"nic/mem"
)

// The front panel: a TUI over a live Computer. Step with the keyboard or
// let the clocked driver free-run while the panel repaints on a timer.

const cellsPerRow = 16

type hotCell struct {
	mu   sync.Mutex
	addr int
	seen bool
}

// CellChanged remembers the most recent memory write so the panel can
// mark it. Runs on whichever goroutine did the write.
func (h *hotCell) CellChanged(ch mem.CellChange) {
	h.mu.Lock()
	h.addr, h.seen = ch.Addr, true
	h.mu.Unlock()
}

func (h *hotCell) last() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addr, h.seen
}

type model struct {
	c      *Computer
	hot    *hotCell
	prevPC uint64
}

type repaintMsg time.Time

func repaint() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg {
		return repaintMsg(t)
	})
}

// Init is the first function that will be called. The panel repaints on
// a fixed timer so a free-running machine stays visible.
func (m model) Init() tea.Cmd {
	return repaint()
}

// Update is called when a message is received.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case repaintMsg:
		return m, repaint()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.c.Stop()
			return m, tea.Quit

		case " ", "j":
			if !m.c.IsRunning() {
				m.prevPC = m.c.Proc.PC.Get()
				m.c.Step()
			}

		case "r":
			m.c.StartStop()

		case "x":
			m.prevPC = 0
			// a reset failure means a corrupt image; the monitor
			// surfaces those, the panel just shows the clean machine
			_ = m.c.Reset()

		case "+":
			m.c.SetClockTick(max(m.c.ClockTick()/2, time.Millisecond))

		case "-":
			m.c.SetClockTick(m.c.ClockTick() * 2)
		}
	}
	return m, nil
}

// renderRow renders one row of cells. The cell under the PC is bracketed;
// the most recently written cell is starred.
func (m model) renderRow(start int) string {
	pc := int(m.c.Proc.PC.Get())
	hotAddr, hotSeen := m.hot.last()

	s := fmt.Sprintf("%04x | ", start)
	for i := range cellsPerRow {
		addr := start + i
		if addr >= m.c.Geo.MemoryCells {
			break
		}
		v := m.c.Mem.Get(addr)
		switch {
		case addr == pc:
			s += fmt.Sprintf("[%x] ", v)
		case hotSeen && addr == hotAddr:
			s += fmt.Sprintf("*%x* ", v)
		default:
			s += fmt.Sprintf(" %x  ", v)
		}
	}
	return s
}

func (m model) memTable() string {
	header := "addr | "
	for b := range cellsPerRow {
		header += fmt.Sprintf(" %x   ", b)
	}
	rows := []string{header}

	last := (m.c.Geo.MemoryCells - 1) / cellsPerRow
	starts := []int{}
	for r := 0; r <= min(4, last); r++ {
		starts = append(starts, r*cellsPerRow)
	}
	// the input tail and its pointer live in the last two rows
	for r := max(last-1, 5); r <= last; r++ {
		starts = append(starts, r*cellsPerRow)
	}

	prev := -1
	for _, start := range starts {
		if prev >= 0 && start > prev+cellsPerRow {
			rows = append(rows, " ...")
		}
		rows = append(rows, m.renderRow(start))
		prev = start
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	p := m.c.Proc

	var regs string
	for i, r := range p.Regs {
		regs += fmt.Sprintf("%s: %02x  ", r.Name(), r.Get())
		if i%4 == 3 {
			regs += "\n"
		}
	}

	run := "stopped"
	if m.c.IsRunning() {
		run = "running"
	}

	return fmt.Sprintf(`
PC: %02x (%02x)
IR: %04x %s
NR: %s
SR: %s
tick: %s  %s
`,
		p.PC.Get(), m.prevPC,
		p.IR.Get(), p.Mnemonic(p.IR.Get()),
		cpu.MoveName(p.NextMove()),
		cpu.StatusName(p.Status()),
		m.c.ClockTick(), run,
	) + "\n" + regs
}

// View renders the panel, which is just a string.
func (m model) View() string {
	op := m.c.Proc.IR.Get() >> ((1 + m.c.Geo.WordBlocks) * m.c.Geo.BlockSize)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memTable(),
			"   ",
			m.status(),
		),
		"",
		spew.Sdump(cpu.Opcodes[op]),
		"space/j step  r run/stop  x reset  +/- pace  q quit",
	)
}

// Panel opens the interactive front panel over this Computer and blocks
// until the user quits it. The driver is stopped on the way out.
func (c *Computer) Panel() error {
	hot := &hotCell{}
	c.Mem.Subscribe(hot)
	_, err := tea.NewProgram(model{c: c, hot: hot}).Run()
	c.Stop()
	return err
}
