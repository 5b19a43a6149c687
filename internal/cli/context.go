package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

// CommandContext bundles what every command needs: the global
// configuration, the persistent flags and the progress logger.
type CommandContext struct {
	Global        *config.GlobalConfig
	Logger        *log.Logger
	DryRun        bool
	Verbose       bool
	Quiet         bool
	NoInteractive bool
}

// OpenCommandContext loads the global configuration and builds the
// logger from it and the persistent flags.
func OpenCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	if mustGetBool(cmd, "no-color") {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	global, err := config.LoadGlobal()
	if err != nil {
		return nil, withExitCode(config.ExitConfigurationError, err)
	}

	cc := &CommandContext{
		Global:        global,
		DryRun:        mustGetBool(cmd, "dry-run"),
		Verbose:       mustGetBool(cmd, "verbose"),
		Quiet:         mustGetBool(cmd, "quiet"),
		NoInteractive: mustGetBool(cmd, "no-interactive"),
	}

	logger, err := ui.NewLogger(cmd.ErrOrStderr(), ui.LoggerOptions{
		Level:   global.LogLevel,
		Format:  global.LogFormat,
		Verbose: cc.Verbose,
		Quiet:   cc.Quiet,
	})
	if err != nil {
		return nil, withExitCode(config.ExitConfigurationError, err)
	}
	cc.Logger = logger

	return cc, nil
}

// ShouldPrompt reports whether interactive forms may be shown.
func (cc *CommandContext) ShouldPrompt() bool {
	return !cc.Quiet && ui.ShouldPrompt(cc.NoInteractive)
}
