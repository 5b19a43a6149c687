package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script/words"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a starter script",
	Long: `Writes a starter script. Without PATH a name is generated.

On a terminal the name, working directory and starter rows are asked
for; otherwise the flags and defaults are used.`,
	Args: maxArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := OpenCommandContext(cmd)
		if err != nil {
			return err
		}

		answers := ui.InitAnswers{
			Directory: mustGetString(cmd, "dir"),
			Template:  mustGetString(cmd, "template"),
		}
		if len(args) > 0 {
			answers.Name = args[0]
		}
		if answers.Name == "" {
			answers.Name = words.ScriptFileName("")
		}

		if cc.ShouldPrompt() {
			answers, err = ui.PromptInit(answers, templateChoices())
			if err != nil {
				return err
			}
		}

		path := scriptPath(answers.Name)
		if answers.Directory == "" {
			answers.Directory = words.ScratchDirectory(filepath.Base(path))
		}

		scriptCfg, err := starterScript(answers.Template, answers.Directory)
		if err != nil {
			return withExitCode(config.ExitInvalidArguments, err)
		}

		force := mustGetBool(cmd, "force")
		if _, err := os.Stat(path); err == nil && !force {
			if !cc.ShouldPrompt() {
				return withExitCode(config.ExitConfigurationError,
					withHint(fmt.Errorf("%s already exists", path), "pass --force to overwrite it"))
			}
			overwrite, err := ui.Confirm("Overwrite script", fmt.Sprintf("%s already exists. Overwrite it?", path))
			if err != nil {
				return err
			}
			if !overwrite {
				ui.PrintInfo("Nothing written")
				return nil
			}
			force = true
		}

		if cc.DryRun {
			ui.PrintInfo(fmt.Sprintf("[DRY-RUN] would write %s (%d rows)", path, len(scriptCfg.Rows)))
			return nil
		}

		if err := config.SaveScript(path, scriptCfg, force); err != nil {
			return err
		}

		if !cc.Quiet {
			ui.PrintDone(fmt.Sprintf("Wrote %s", path))
			ui.PrintInfo(fmt.Sprintf("Create %s, then run `scriptrun run %s`", answers.Directory, path))
		}
		return nil
	},
}

// scriptPath keeps names that already carry a script extension and
// otherwise derives a file name from them.
func scriptPath(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return name
	}
	return filepath.Join(filepath.Dir(name), words.ScriptFileName(filepath.Base(name)))
}

func init() {
	initCmd.Flags().String("dir", "", "Working directory written into the script")
	initCmd.Flags().String("template", defaultTemplate, "Starter rows: authoring, commands or empty")
	initCmd.Flags().Bool("force", false, "Overwrite an existing script")
	rootCmd.AddCommand(initCmd)
}
