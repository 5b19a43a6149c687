package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/fs"
	"github.com/michaeldyrynda/scriptrun/internal/script"
	"github.com/michaeldyrynda/scriptrun/internal/script/types"
	"github.com/michaeldyrynda/scriptrun/internal/session"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run SCRIPT...",
	Short: "Run one or more scripts",
	Long: `Runs each script's rows in order against a fresh session.

A row that raises a command error, returns an unexpected result, or
expects an error that never comes fails the script. By default the
script stops at its first failing row; --keep-going runs every row.

With --dry-run the script runs against an in-memory copy of the file
system and commands are recorded instead of launched. With --watch the
scripts run again whenever their file changes, until interrupted.`,
	Args: requireArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := OpenCommandContext(cmd)
		if err != nil {
			return err
		}

		opts := runFlags{
			directory: mustGetString(cmd, "dir"),
			keepGoing: mustGetBool(cmd, "keep-going") || cc.Global.KeepGoing,
			noLock:    mustGetBool(cmd, "no-lock") || !cc.Global.Lock,
			vars:      mustGetStringToString(cmd, "var"),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var failed []string
		for _, path := range args {
			if err := runScript(ctx, cc, path, opts); err != nil {
				if ExitCode(err) != config.ExitScriptFailed {
					return err
				}
				failed = append(failed, path)
			}
		}

		if mustGetBool(cmd, "watch") {
			return watchScripts(ctx, cc, args, func(path string) {
				if err := runScript(ctx, cc, path, opts); err != nil && ExitCode(err) != config.ExitScriptFailed {
					ui.PrintError(err.Error())
				}
			})
		}

		if len(failed) > 0 {
			return withExitCode(config.ExitScriptFailed,
				&reportedError{err: fmt.Errorf("%d script(s) failed: %s", len(failed), strings.Join(failed, ", "))})
		}
		return nil
	},
}

type runFlags struct {
	directory string
	keepGoing bool
	noLock    bool
	vars      map[string]string
}

func runScript(ctx context.Context, cc *CommandContext, path string, opts runFlags) error {
	scriptCfg, err := config.LoadScript(path)
	if err != nil {
		return withExitCode(config.ExitConfigurationError, err)
	}
	if opts.directory != "" {
		scriptCfg.Directory = opts.directory
	}
	if len(opts.vars) > 0 {
		if scriptCfg.Vars == nil {
			scriptCfg.Vars = make(map[string]string, len(opts.vars))
		}
		for k, v := range opts.vars {
			scriptCfg.Vars[strings.ToLower(k)] = v
		}
	}

	if !opts.noLock && !cc.DryRun {
		release, err := acquireScriptLock(path)
		if err != nil {
			if errors.Is(err, errScriptLocked) {
				return withExitCode(config.ExitScriptLocked,
					withHint(err, "wait for the other run to finish, or pass --no-lock"))
			}
			return err
		}
		defer release()
	}

	if !cc.Quiet {
		title := "Running " + path
		if cc.DryRun {
			title = "[DRY-RUN] " + title
		}
		ui.PrintStep(title)
	}

	logger := cc.Logger.With("run", uuid.NewString()[:8])
	launcher, sess := newRunSession(cc, logger)
	runner := script.NewRunner()
	if !cc.Quiet {
		runner.WithSpinner(ui.RunWithSpinner)
	}

	report, err := runner.Run(ctx, scriptCfg, sess, logger, types.RunOptions{
		DryRun:    cc.DryRun,
		Verbose:   cc.Verbose,
		KeepGoing: opts.keepGoing,
	})
	if err != nil {
		return withExitCode(config.ExitConfigurationError, fmt.Errorf("%s: %w", path, err))
	}

	printReport(cc, report)
	if recorder, ok := launcher.(*session.RecordingLauncher); ok && !cc.Quiet {
		for _, call := range recorder.Calls() {
			ui.PrintInfo(fmt.Sprintf("[DRY-RUN] would run: %s", strings.Join(append([]string{call.Name}, call.Args...), " ")))
		}
	}

	if !report.Success() {
		return withExitCode(config.ExitScriptFailed, &reportedError{err: fmt.Errorf("%s failed", path)})
	}
	return nil
}

// newRunSession builds the collaborators for one script. A dry run keeps
// writes in memory, records launches and skips waits.
func newRunSession(cc *CommandContext, logger *log.Logger) (session.Launcher, *session.Session) {
	var launcher session.Launcher
	opts := []session.Option{
		session.WithObserver(logger),
		session.WithPreviewLength(cc.Global.PreviewLength),
	}

	if cc.DryRun {
		launcher = &session.RecordingLauncher{}
		opts = append(opts,
			session.WithFS(fs.NewDryRunFS()),
			session.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		)
	} else {
		launcher = session.NewExecLauncher(logger)
		if !cc.Quiet && ui.IsInteractive() {
			opts = append(opts, session.WithSleeper(ui.SpinnerSleeper))
		}
	}
	opts = append(opts, session.WithLauncher(launcher))

	return launcher, session.New(opts...)
}

func printReport(cc *CommandContext, report *script.Report) {
	if !report.Success() {
		for _, result := range report.Results {
			if !result.Ok() {
				ui.PrintErrorWithHint(
					fmt.Sprintf("row %d (%s) %s", result.Index, describeRow(result.Row), result.Status),
					errString(result.Err),
				)
			}
		}
	}

	if cc.Quiet {
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := result.Actual
		if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(result.Index),
			describeRow(result.Row),
			string(result.Status),
			detail,
		})
	}
	fmt.Fprint(ui.Stdout(), ui.RenderResultTable(rows))

	summary := fmt.Sprintf("%d passed, %d failed, %d errors, %d skipped",
		report.Passed, report.Failed, report.Errors, report.Skipped)
	if report.Success() {
		ui.PrintDone(summary)
	} else {
		ui.PrintWarning(summary)
	}
}

func describeRow(row types.Row) string {
	if s, ok := row.(fmt.Stringer); ok {
		return s.String()
	}
	return row.Name()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func init() {
	runCmd.Flags().String("dir", "", "Directory applied before the first row (overrides the script)")
	runCmd.Flags().Bool("keep-going", false, "Run every row even after a failure")
	runCmd.Flags().Bool("no-lock", false, "Do not take the per-script lock")
	runCmd.Flags().Bool("watch", false, "Run the scripts again whenever they change")
	runCmd.Flags().StringToString("var", nil, "Template variable as key=value (repeatable)")
	rootCmd.AddCommand(runCmd)
}
