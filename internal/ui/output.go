package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects every Print helper. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Stdout returns the writer Print helpers use for normal output.
func Stdout() io.Writer {
	return stdout
}

func PrintStep(message string) {
	fmt.Fprintf(stdout, "%s %s\n", CodeStyle.Render("==>"), message)
}

func PrintInfo(message string) {
	fmt.Fprintln(stdout, MutedStyle.Render(message))
}

func PrintSuccess(message string) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessBadge.Render("OK"), message)
}

func PrintDone(message string) {
	fmt.Fprintf(stdout, "%s %s\n", SuccessBadge.Render("DONE"), message)
}

func PrintWarning(message string) {
	fmt.Fprintf(stderr, "%s %s\n", WarningBadge.Render("WARN"), message)
}

func PrintError(message string) {
	fmt.Fprintf(stderr, "%s %s\n", ErrorBadge.Render("ERROR"), message)
}

func PrintErrorWithHint(message, hint string) {
	PrintError(message)
	if hint != "" {
		fmt.Fprintf(stderr, "  %s\n", MutedStyle.Render(hint))
	}
}
