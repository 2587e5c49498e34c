package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [video_file]",
	Short: "List the subtitle tracks of a video",
	Long: `List the subtitle tracks of a video with their IDs, codecs and languages.

Examples:
  substyle tracks movie.mkv
  substyle movie.mkv -t 3   # then process one of them`,
	Args: cobra.ExactArgs(1),
	RunE: runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}
	capability, err := a.registry.Resolve(args[0])
	if err != nil {
		return err
	}
	tracks, err := capability.Analyze(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No subtitle tracks found")
		return nil
	}

	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		def := ""
		if t.Default {
			def = "yes"
		}
		rows = append(rows, []string{strconv.Itoa(t.ID), t.Codec, t.Language, t.Name, def})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(trackColumns, rows))
	return nil
}
