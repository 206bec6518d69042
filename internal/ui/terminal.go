package ui

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115 -- fd fits in int
}

// ShouldUseColor follows the NO_COLOR and CLICOLOR conventions, falling back
// to a TTY check.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return IsTerminal()
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	if !IsTerminal() {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd())) // #nosec G115
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
