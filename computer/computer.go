// Package computer composes a memory and a processor into the machine a
// user actually drives: program loading, the tail-pointer input/output
// convention, single-stepping, and a clocked free-run mode.

package computer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nic/cpu"
	"nic/mem"
)

// Magic is the header every program image must start with. It buys a
// cheap sanity check that a file really is an image and not, say, an
// assembler source listing.
const Magic = "1f1f1f1f"

// DefaultTick is the free-run pace of a fresh machine: slow enough to
// watch individual instructions go by.
const DefaultTick = 250 * time.Millisecond

var (
	ErrWrongProgramFormat = errors.New("wrong program format")
	ErrProgramTooLarge    = errors.New("program too large")
	ErrInputTooLarge      = errors.New("input too large")
	ErrNoProgram          = errors.New("no program loaded")
)

// A Computer owns one Memory and one Processor, remembers the current
// program image, and gates at most one clocked driver at a time.
type Computer struct {
	Geo  cpu.Geometry
	Mem  *mem.Memory
	Proc *cpu.Processor

	mu      sync.Mutex // serialises program access and driver lifecycle
	program string     // current image, header stripped
	driver  *driver

	tickMu    sync.Mutex // separate so a sleeping driver never contends with Stop
	clockTick time.Duration

	running atomic.Bool
}

func New(geo cpu.Geometry) (*Computer, error) {
	if err := geo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	m := mem.New(geo.BlockSize, geo.MemoryCells)
	return &Computer{
		Geo:       geo,
		Mem:       m,
		Proc:      cpu.New(geo, m),
		clockTick: DefaultTick,
	}, nil
}

// SetProgram installs a new program image. The image must start with the
// magic header and fit in memory; it is not loaded until the next Reset.
func (c *Computer) SetProgram(image string) error {
	body, ok := strings.CutPrefix(image, Magic)
	if !ok {
		return ErrWrongProgramFormat
	}
	if len(body)%c.Mem.HexSize() != 0 {
		return fmt.Errorf("%w: fractional block", ErrWrongProgramFormat)
	}
	if len(body) > c.Geo.MaxProgramDigits() {
		return ErrProgramTooLarge
	}
	c.mu.Lock()
	c.program = body
	c.mu.Unlock()
	return nil
}

// Program returns the current image body (no header). Empty until
// SetProgram succeeds.
func (c *Computer) Program() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.program
}

// Reset stops any running driver, resets the processor, clears memory,
// and loads the program image at address 0.
func (c *Computer) Reset() error {
	c.Stop()
	c.Proc.Reset()
	c.Mem.Clear()
	if p := c.Program(); p != "" {
		if err := c.Mem.Load(0, p); err != nil {
			return fmt.Errorf("loading program: %w", err)
		}
	}
	return nil
}

// LoadInput places input as high in memory as possible and writes its
// starting address, as two hex digits, into the last two cells. The
// program finds its input by reading that tail pointer.
func (c *Computer) LoadInput(input string) error {
	program := c.Program()
	if program == "" {
		return ErrNoProgram
	}
	if len(input)%c.Mem.HexSize() != 0 {
		return fmt.Errorf("%w: input is a fractional number of blocks", mem.ErrBadHexChar)
	}
	if len(program)+len(input)+2 > c.Geo.MaxProgramDigits() {
		return ErrInputTooLarge
	}
	addr := c.Geo.MemoryCells - len(input)/c.Mem.HexSize() - 2
	if err := c.Mem.Load(addr, input); err != nil {
		return fmt.Errorf("loading input: %w", err)
	}
	if err := c.Mem.Load(c.Geo.MemoryCells-2, fmt.Sprintf("%02x", addr)); err != nil {
		return fmt.Errorf("loading input pointer: %w", err)
	}
	return nil
}

// ReadOutput reads back the result through the tail pointer: everything
// from the address in the last two cells up to the pointer cells
// themselves. The pointer is clamped so a runaway program cannot make the
// read wrap the whole of memory.
func (c *Computer) ReadOutput() string {
	l := c.Geo.MemoryCells
	pointer := c.Mem.Get(l-2)<<4 | c.Mem.Get(l-1)
	pointer = min(pointer, uint64(l-2))
	return c.Mem.Read(int(pointer), l-2)
}

// Step advances the processor one half-step.
func (c *Computer) Step() {
	c.Proc.Step()
}

// StepThrough runs the processor flat out, no clock, until the status
// leaves Success.
func (c *Computer) StepThrough() {
	for c.Proc.Status() == cpu.Success {
		c.Proc.Step()
	}
}

// Execute runs one complete job: reset, load the input, run to halt,
// read the output back.
func (c *Computer) Execute(input string) (string, error) {
	if err := c.Reset(); err != nil {
		return "", err
	}
	if err := c.LoadInput(input); err != nil {
		return "", err
	}
	c.StepThrough()
	return c.ReadOutput(), nil
}

// ExecuteStream runs one Execute per input line and writes one output
// line each. The program stays installed across lines; every line starts
// from a full Reset. The first failing line stops the stream.
func (c *Computer) ExecuteStream(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out, err := c.Execute(scanner.Text())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return scanner.Err()
}

// SetClockTick changes the free-run pace. A running driver picks the new
// value up before its next sleep.
func (c *Computer) SetClockTick(d time.Duration) {
	c.tickMu.Lock()
	c.clockTick = d
	c.tickMu.Unlock()
}

func (c *Computer) ClockTick() time.Duration {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	return c.clockTick
}

// IsRunning reports whether a clocked driver is advancing the processor.
func (c *Computer) IsRunning() bool {
	return c.running.Load()
}
