package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/session"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Setup global configuration",
	Long: `Creates the global scriptrun.yaml with default settings and
reports how this platform handles line endings and executable bits.`,
	Args: maxArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := OpenCommandContext(cmd)
		if err != nil {
			return err
		}

		configDir, err := config.GetGlobalConfigDir()
		if err != nil {
			return withExitCode(config.ExitConfigurationError, err)
		}

		force := mustGetBool(cmd, "force")
		path := filepath.Join(configDir, config.ConfigName+".yaml")
		if _, err := os.Stat(path); err == nil && !force {
			return withExitCode(config.ExitConfigurationError,
				withHint(fmt.Errorf("%s already exists", path), "pass --force to overwrite it"))
		}

		if cc.DryRun {
			ui.PrintInfo(fmt.Sprintf("[DRY-RUN] would write %s", path))
			return nil
		}

		written, err := config.CreateGlobalConfig(config.DefaultGlobalConfig())
		if err != nil {
			return withExitCode(config.ExitConfigurationError, err)
		}

		if cc.Quiet {
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.HeaderStyle.Render("Scriptrun Installation"))
		fmt.Fprintln(out, ui.RenderTable([]string{"SETTING", "VALUE"}, platformRows(written)))
		ui.PrintDone("Configuration saved")
		ui.PrintInfo("Run `scriptrun init` to write a first script")
		return nil
	},
}

func platformRows(configPath string) [][]string {
	separator := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(session.LineSeparator)
	return [][]string{
		{"platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"config", configPath},
		{"line separator", separator},
		{"executable bit", strconv.FormatBool(runtime.GOOS != "windows")},
		{"preview length", strconv.Itoa(config.DefaultPreviewLength)},
	}
}

func init() {
	installCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(installCmd)
}
