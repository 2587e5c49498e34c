package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/substyle/internal/config"
	"github.com/mgpai22/substyle/internal/editor"
	"github.com/mgpai22/substyle/internal/logging"
	"github.com/mgpai22/substyle/internal/pipeline"
	"github.com/mgpai22/substyle/internal/style"
)

var (
	verbose       bool
	appConfigPath string
	logger        *logging.Logger
	appConfig     config.Config
)

// ErrProcessingFailed is returned when the pipeline reports failure. The
// cause has already been logged.
var ErrProcessingFailed = errors.New("processing failed")

var rootCmd = &cobra.Command{
	Use:   "substyle [video_file]",
	Short: "Restyle the subtitles embedded in Matroska videos",
	Long: `Substyle extracts a subtitle track from a video, normalizes it to ASS,
restyles it from a JSON style document or by hand in Aegisub, and muxes it
back into a new file.

Examples:
  substyle movie.mkv
  substyle movie.mkv -t 3 -c style.json --no-manual
  substyle movie.mkv --font-name "Noto Sans" --font-size 28 -o styled.mkv
  substyle --gui`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		// a missing .env is fine
		_ = godotenv.Load()

		path := appConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
	RunE: runRoot,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&appConfigPath, "app-config", "", "Application config file (default $SUBSTYLE_CONFIG or ~/.config/substyle/config.toml)")
	rootCmd.PersistentFlags().
		StringP("config", "c", "", "JSON style configuration file")
	rootCmd.PersistentFlags().
		String("font-name", "", "Quick font name override")
	rootCmd.PersistentFlags().
		Int("font-size", 0, "Quick font size override")

	rootCmd.Flags().StringP("output", "o", "", "Output video path")
	rootCmd.Flags().IntP("track", "t", 0, "Subtitle track ID to process (default: first subtitle track)")
	rootCmd.Flags().Bool("no-manual", false, "Skip manual styling in Aegisub")
	rootCmd.Flags().Bool("gui", false, "Launch the interactive batch interface")
	rootCmd.Flags().Bool("replace", false, "Replace the input file, keeping a backup of the original")
}

func runRoot(cmd *cobra.Command, args []string) error {
	gui, _ := cmd.Flags().GetBool("gui")
	if gui || len(args) == 0 {
		return runBatchUI(cmd, args)
	}

	a, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}
	runner, err := a.runner(runnerOptions{
		confirmer: editor.NewPromptConfirmer(os.Stdin, cmd.OutOrStdout()),
	})
	if err != nil {
		return err
	}

	req, err := requestFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	res, err := runner.Process(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProcessingFailed, args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", res.Output)
	if res.Backup != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Backup: %s\n", res.Backup)
	}
	return nil
}

func requestFromFlags(cmd *cobra.Command, input string) (pipeline.Request, error) {
	output, _ := cmd.Flags().GetString("output")
	noManual, _ := cmd.Flags().GetBool("no-manual")
	replace, _ := cmd.Flags().GetBool("replace")

	req := pipeline.Request{
		Input:           input,
		Output:          output,
		StyleConfig:     inlineStyle(cmd),
		StyleConfigFile: styleConfigFile(cmd),
		ManualStyling:   !noManual,
		ReplaceOriginal: replace || appConfig.Output.ReplaceOriginal,
	}
	if cmd.Flags().Changed("track") {
		id, err := cmd.Flags().GetInt("track")
		if err != nil {
			return pipeline.Request{}, err
		}
		req.TrackID = &id
	}
	if req.ReplaceOriginal && output != "" {
		return pipeline.Request{}, errors.New("--output cannot be combined with --replace")
	}
	return req, nil
}

// inlineStyle collects the quick font overrides; nil when none were given.
func inlineStyle(cmd *cobra.Command) style.Config {
	cfg := style.Config{}
	if name, _ := cmd.Flags().GetString("font-name"); strings.TrimSpace(name) != "" {
		cfg[style.KeyFontName] = name
	}
	if size, _ := cmd.Flags().GetInt("font-size"); size != 0 {
		cfg[style.KeyFontSize] = strconv.Itoa(size)
	}
	if len(cfg) == 0 {
		return nil
	}
	return cfg
}

// styleConfigFile prefers --config over the app config default.
func styleConfigFile(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return appConfig.Style.ConfigFile
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
