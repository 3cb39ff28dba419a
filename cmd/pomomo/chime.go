package main

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

var errNoTerminal = errors.New("output is not a terminal")

// terminalBell rings the terminal bell as the completion cue.
type terminalBell struct {
	out *os.File
}

func newTerminalBell(out *os.File) terminalBell {
	return terminalBell{out: out}
}

func (b terminalBell) Play() error {
	if !isatty.IsTerminal(b.out.Fd()) && !isatty.IsCygwinTerminal(b.out.Fd()) {
		return errNoTerminal
	}
	_, err := io.WriteString(b.out, "\a")
	return err
}
