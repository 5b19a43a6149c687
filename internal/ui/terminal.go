package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
)

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// ShouldPrompt reports whether a form may be shown.
func ShouldPrompt(noInteractive bool) bool {
	if noInteractive || os.Getenv("CI") != "" {
		return false
	}
	return IsInteractive()
}

// IsAbort reports whether err means the user cancelled a form.
func IsAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}
