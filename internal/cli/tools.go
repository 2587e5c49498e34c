package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/substyle/internal/deps"
	"github.com/mgpai22/substyle/internal/ffmpeg"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Report which external tools are available",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}

	rows := [][]string{}
	for _, s := range deps.CheckBinaries(ctx, a.mkv.Requirements()) {
		rows = append(rows, statusRow(s.Name, s.Command, s.Available, s.Version, s.Detail))
	}

	// reporting must not trigger a download
	resolver := ffmpeg.NewResolver(appConfig.Tools.FFmpeg, false, logger)
	if path, err := resolver.Path(); err != nil {
		rows = append(rows, statusRow("ffmpeg", "", false, "", "not found, SRT/VTT use the built-in converter"))
	} else {
		out, probeErr := (deps.Checker{}).Probe(ctx, path, "-version")
		detail := ""
		if probeErr != nil {
			detail = probeErr.Error()
		}
		rows = append(rows, statusRow("ffmpeg", path, probeErr == nil, deps.FirstLine(out), detail))
	}

	if a.editor.Available() {
		rows = append(rows, statusRow("aegisub", a.editor.Path(), true, a.editor.Version(ctx), ""))
	} else {
		rows = append(rows, statusRow("aegisub", "", false, "", "not found, manual styling unavailable"))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(toolColumns, rows))

	capRows := [][]string{}
	for _, c := range a.registry.Capabilities() {
		state := "missing tools"
		if c.ToolsAvailable(ctx) {
			state = "ready"
		}
		capRows = append(capRows, []string{c.Name, strings.Join(c.Extensions, ", "), state})
	}
	fmt.Fprintln(out, renderTable(containerColumns, capRows))
	return nil
}

func statusRow(name, path string, ok bool, version, detail string) []string {
	status := "available"
	if !ok {
		status = "missing"
		if detail != "" {
			status += ": " + detail
		}
	}
	return []string{name, path, status, version}
}
