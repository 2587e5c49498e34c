package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/substyle/internal/config"
	"github.com/mgpai22/substyle/internal/logging"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a sample application config",
	Long: `Write a commented sample config to --app-config, $SUBSTYLE_CONFIG or
~/.config/substyle/config.toml. An existing file is never overwritten.

Examples:
  substyle init-config
  substyle init-config --print > substyle.toml`,
	Args: cobra.NoArgs,
	// the config being created may not parse yet
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	RunE: runInitConfig,
}

func init() {
	rootCmd.AddCommand(initConfigCmd)

	initConfigCmd.Flags().Bool("print", false, "Print the sample config instead of writing it")
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
		return err
	}
	path := appConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.WriteSample(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config to %s\n", path)
	return nil
}
