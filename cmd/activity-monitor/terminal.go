package main

import (
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether f is attached to a terminal. The status line
// draws only when it is.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
