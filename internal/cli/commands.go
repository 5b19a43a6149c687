package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/script/rows"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the row commands scripts can use",
	Long: `Lists every row command with its arguments. Names are matched
gracefully: case, spaces, dashes and underscores are ignored, so
"open file", "openFile" and "open-file" are the same row.`,
	Args: maxArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tableRows [][]string
		for _, def := range rows.Definitions() {
			result := "-"
			if def.Result {
				result = "true/false"
			}
			tableRows = append(tableRows, []string{def.Name, strings.Join(def.Args, ", "), result, def.Summary})
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTable([]string{"COMMAND", "ARGS", "RESULT", "DESCRIPTION"}, tableRows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
