package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "scriptrun",
	Short: "Table-driven file and process fixture",
	Long: `Scriptrun executes scripts of rows against a stateful session:
set a working directory, author files line by line, create and delete
files, check modification times, launch commands and wait.

Each row is a command followed by its arguments, the same vocabulary a
table-driven acceptance test would use.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return config.ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return config.ExitGeneralError
}

// hintError attaches a suggestion that is printed under the error.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string {
	return e.err.Error()
}

func (e *hintError) Unwrap() error {
	return e.err
}

func withHint(err error, hint string) error {
	return &hintError{err: err, hint: hint}
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if ui.IsAbort(err) {
			return nil
		}
		return err
	}
	return nil
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	ui.SetOutput(stdout, stderr)

	err := Execute()
	if err == nil {
		return config.ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		var hinted *hintError
		if errors.As(err, &hinted) {
			ui.PrintErrorWithHint(err.Error(), hinted.hint)
		} else {
			ui.PrintError(err.Error())
		}
	}
	return ExitCode(err)
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func init() {
	rootCmd.PersistentFlags().Bool("dry-run", false, "Preview operations without executing")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("no-interactive", false, "Disable interactive prompts")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(config.ExitInvalidArguments, err)
	})
}

// requireArgs is cobra.MinimumNArgs with the invalid-arguments exit code.
func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return withExitCode(config.ExitInvalidArguments,
				fmt.Errorf("%s requires at least %d argument(s), received %d", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with the invalid-arguments exit code.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return withExitCode(config.ExitInvalidArguments,
				fmt.Errorf("%s accepts at most %d argument(s), received %d", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetStringToString(cmd *cobra.Command, name string) map[string]string {
	value, err := cmd.Flags().GetStringToString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}
