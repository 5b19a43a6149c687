package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh/spinner"

	"github.com/michaeldyrynda/scriptrun/internal/session"
)

// RunWithSpinner runs fn behind a spinner on a terminal and plainly
// otherwise.
func RunWithSpinner(title string, fn func() error) error {
	if !IsInteractive() {
		return fn()
	}

	var fnErr error
	if err := spinner.New().
		Title(title).
		Action(func() { fnErr = fn() }).
		Run(); err != nil {
		return err
	}
	return fnErr
}

// SpinnerSleeper waits for d behind a spinner. Off a terminal it is a
// plain timer wait. It matches the session's sleeper signature.
func SpinnerSleeper(ctx context.Context, d time.Duration) error {
	return RunWithSpinner(fmt.Sprintf("Waiting %s", d), func() error {
		return session.TimerSleeper(ctx, d)
	})
}
