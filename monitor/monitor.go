// Package monitor implements the interactive console: a small command
// loop for loading images, stepping the machine and poking at its state,
// with the front panel one command away.

package monitor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"nic/computer"
	"nic/cpu"
)

var commands = []string{
	"exec", "go", "halt", "input", "load", "mem", "panel",
	"program", "quit", "reg", "run", "step", "tick",
}

// Run reads and executes console commands until quit or end of input.
func Run(c *computer.Computer) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		var out []string
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, strings.ToLower(l)) {
				out = append(out, cmd)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("nic> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				c.Stop()
				return
			}
			slog.Error("error reading line: " + err.Error())
			c.Stop()
			return
		}
		line.AppendHistory(input)

		quit, err := dispatch(c, input)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}
		if quit {
			return
		}
	}
}

func dispatch(c *computer.Computer, input string) (quit bool, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "q":
		c.Stop()
		return true, nil

	case "load":
		if len(args) != 1 {
			return false, errors.New("usage: load <file>")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return false, fmt.Errorf("reading program image: %w", err)
		}
		if err := c.SetProgram(strings.TrimSpace(string(data))); err != nil {
			return false, err
		}
		return false, c.Reset()

	case "program":
		if len(args) != 1 {
			return false, errors.New("usage: program <heximage>")
		}
		if err := c.SetProgram(args[0]); err != nil {
			return false, err
		}
		return false, c.Reset()

	case "input":
		if len(args) > 1 {
			return false, errors.New("usage: input [hex]")
		}
		if err := c.Reset(); err != nil {
			return false, err
		}
		return false, c.LoadInput(strings.Join(args, ""))

	case "step":
		n := 1
		if len(args) == 1 {
			if n, err = strconv.Atoi(args[0]); err != nil {
				return false, fmt.Errorf("bad step count: %w", err)
			}
		}
		for range n {
			c.Step()
		}
		printState(c)
		return false, nil

	case "run":
		c.StepThrough()
		printState(c)
		return false, nil

	case "exec":
		out, err := c.Execute(strings.Join(args, ""))
		if err != nil {
			return false, err
		}
		fmt.Println(out)
		return false, nil

	case "go":
		c.Start()
		return false, nil

	case "halt":
		c.Stop()
		printState(c)
		return false, nil

	case "tick":
		if len(args) != 1 {
			return false, errors.New("usage: tick <ms>")
		}
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms < 0 {
			return false, errors.New("bad tick value")
		}
		c.SetClockTick(time.Duration(ms) * time.Millisecond)
		return false, nil

	case "mem":
		if len(args) != 2 {
			return false, errors.New("usage: mem <from> <to>")
		}
		p, err1 := strconv.ParseInt(args[0], 16, 64)
		q, err2 := strconv.ParseInt(args[1], 16, 64)
		if err1 != nil || err2 != nil {
			return false, errors.New("bad address")
		}
		fmt.Println(c.Mem.Read(int(p), int(q)))
		return false, nil

	case "reg":
		printState(c)
		for i, r := range c.Proc.Regs {
			fmt.Printf("%s=%02x ", r.Name(), r.Get())
			if i%8 == 7 {
				fmt.Println()
			}
		}
		return false, nil

	case "panel":
		return false, c.Panel()
	}

	return false, fmt.Errorf("unknown command %q", cmd)
}

func printState(c *computer.Computer) {
	fmt.Printf("pc=%02x ir=%04x nr=%s sr=%s\n",
		c.Proc.PC.Get(),
		c.Proc.IR.Get(),
		cpu.MoveName(c.Proc.NextMove()),
		cpu.StatusName(c.Proc.Status()),
	)
}
