package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check SCRIPT...",
	Short: "Validate scripts without running them",
	Long: `Loads each script and validates every row: the command must be
known, take the right number of arguments, integer arguments must parse
and expectations may only be set on rows that produce a result.`,
	Args: requireArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := OpenCommandContext(cmd)
		if err != nil {
			return err
		}

		runner := script.NewRunner()
		invalid := 0
		for _, path := range args {
			scriptCfg, err := config.LoadScript(path)
			if err == nil {
				err = runner.Check(scriptCfg)
			}
			if err != nil {
				invalid++
				ui.PrintErrorWithHint(path, err.Error())
				continue
			}
			if !cc.Quiet {
				ui.PrintSuccess(fmt.Sprintf("%s (%d rows)", path, len(scriptCfg.Rows)))
			}
		}

		if invalid > 0 {
			return withExitCode(config.ExitConfigurationError,
				&reportedError{err: fmt.Errorf("%d of %d script(s) invalid", invalid, len(args))})
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
