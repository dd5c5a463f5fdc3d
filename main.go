// Command nic runs an instructional computer: a tiny register machine
// meant to be watched one instruction at a time.
//
// With no arguments and a terminal on stdin it opens the interactive
// console. With stdin redirected it runs in stream mode: the first line
// is a program image, every following line is one input, and each input
// produces one line of output.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/urfave/cli.v2"

	"nic/computer"
	"nic/cpu"
	"nic/monitor"
)

const version = "0.4.0"

func main() {
	app := &cli.App{
		Name:    "nic",
		Usage:   "an instructional register machine",
		Version: version,
		Action:  run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", ctx.Args().First())
	}

	c, err := computer.New(cpu.Default())
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return stream(c, os.Stdin, os.Stdout)
	}
	monitor.Run(c)
	return nil
}

func stream(c *computer.Computer, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	image, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading program image: %w", err)
	}
	if err := c.SetProgram(strings.TrimSpace(image)); err != nil {
		return err
	}
	return c.ExecuteStream(br, w)
}
