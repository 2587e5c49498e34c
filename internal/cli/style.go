package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/substyle/internal/style"
	"github.com/mgpai22/substyle/internal/subtitle"
)

var styleCmd = &cobra.Command{
	Use:   "style [subtitle_file]",
	Short: "Apply a style configuration to a subtitle file",
	Long: `Rewrite the Default style of a standalone subtitle file.

SRT and WebVTT input is converted to ASS first and written next to the input
with an .ass extension. ASS input is rewritten in place unless --output is
given.

Examples:
  substyle style episode.ass -c style.json
  substyle style episode.srt --font-name "Noto Sans" --font-size 28
  substyle style episode.ass -c style.json -o styled.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runStyle,
}

var stylesCmd = &cobra.Command{
	Use:   "styles [ass_file]",
	Short: "List the styles declared in an ASS file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStyles,
}

var detectCmd = &cobra.Command{
	Use:   "detect [subtitle_file...]",
	Short: "Print the detected format of subtitle files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(stylesCmd)
	rootCmd.AddCommand(detectCmd)

	styleCmd.Flags().StringP("output", "o", "", "Output subtitle path")
}

// resolveStyleFlags loads the style document named by --config or the app
// config, falling back to the inline font overrides.
func resolveStyleFlags(cmd *cobra.Command) (style.Config, error) {
	if path := styleConfigFile(cmd); path != "" {
		cfg, err := style.LoadFile(path)
		if errors.Is(err, style.ErrNoStyleSection) {
			return nil, fmt.Errorf("%s has no subtitle_style section", path)
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if cfg := inlineStyle(cmd); cfg != nil {
		return cfg, nil
	}
	return nil, errors.New("no style configuration given (use --config, --font-name or --font-size)")
}

func runStyle(cmd *cobra.Command, args []string) error {
	input := args[0]
	cfg, err := resolveStyleFlags(cmd)
	if err != nil {
		return err
	}
	for _, key := range cfg.Unknown() {
		logger.Warnw("ignoring unknown style key", "key", key)
	}

	format, err := subtitle.DetectFormat(input)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	source := input
	switch format {
	case subtitle.FormatASS:
		if output == "" {
			output = input
		}
	case subtitle.FormatSRT, subtitle.FormatVTT:
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + subtitle.FormatASS.Extension()
		}
		a, err := newApp(appConfig, logger)
		if err != nil {
			return err
		}
		if err := a.converter.ToASS(commandContext(cmd), input, output); err != nil {
			return err
		}
		source = output
	default:
		return fmt.Errorf("unsupported subtitle format: %s", input)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}
	res := style.Patch(string(data), cfg)
	switch {
	case res.Replaced:
		logger.Infow("replaced Default style", "keys", len(cfg))
	case res.Inserted:
		logger.Infow("inserted Default style", "keys", len(cfg))
	default:
		logger.Warnw("no [V4+ Styles] section, file left unstyled", "file", source)
	}
	if err := os.WriteFile(output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Styled subtitle written to %s\n", output)
	return nil
}

func runStyles(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}
	entries := style.List(string(data))
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No styles found")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprint(e.Line), e.Name, e.Font, e.Size})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(styleColumns, rows))
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		format, err := subtitle.DetectFormat(path)
		if err != nil {
			logger.Errorw("detection failed", "file", path, "error", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, format)
	}
	if failed > 0 {
		return fmt.Errorf("could not read %d of %d file(s)", failed, len(args))
	}
	return nil
}
