package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mgpai22/substyle/internal/batch"
	"github.com/mgpai22/substyle/internal/editor"
	"github.com/mgpai22/substyle/internal/logging"
	"github.com/mgpai22/substyle/internal/pipeline"
	"github.com/mgpai22/substyle/internal/style"
	"github.com/mgpai22/substyle/internal/tui"
	"github.com/mgpai22/substyle/internal/workspace"
)

var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Process many videos, files and folders alike",
	Long: `Queue videos and folders and process them one after another. Folders are
walked recursively and only supported containers are queued. Each result is
written next to its input with the batch suffix (default "_styled").

On a terminal an interactive view shows progress and asks for confirmation
when manual styling is on. Otherwise progress is printed line by line.

Examples:
  substyle batch season1/ -c style.json
  substyle batch ep01.mkv ep02.mkv --manual
  substyle batch season1/ --no-tui > batch.log`,
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("manual", false, "Open each subtitle in Aegisub before merging")
	batchCmd.Flags().Bool("no-tui", false, "Print progress instead of the interactive view")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	manual, _ := cmd.Flags().GetBool("manual")
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	return startBatch(cmd, args, manual, !noTUI && isTerminal(os.Stdout))
}

// runBatchUI serves --gui and the bare command.
func runBatchUI(cmd *cobra.Command, args []string) error {
	noManual, _ := cmd.Flags().GetBool("no-manual")
	if !isTerminal(os.Stdout) {
		if len(args) == 0 {
			return cmd.Help()
		}
		return startBatch(cmd, args, !noManual, false)
	}
	return startBatch(cmd, args, !noManual, true)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// batchJob is everything a batch run needs besides the file list.
type batchJob struct {
	app       *app
	styleFile string
	inline    style.Config
}

func (j batchJob) request(file string, manual bool) pipeline.Request {
	return pipeline.Request{
		Input:           file,
		Output:          workspace.OutputPath(file, j.app.cfg.Output.BatchSuffix),
		StyleConfig:     j.inline,
		StyleConfigFile: j.styleFile,
		ManualStyling:   manual,
	}
}

// run processes files with one runner wired to confirm, observe and emit.
func (j batchJob) run(ctx context.Context, files []string, manual bool, confirm editor.Confirmer, observe func(pipeline.Stage), emit func(batch.Event), l *logging.Logger) batch.Summary {
	runner, err := j.app.runner(runnerOptions{confirmer: confirm, observer: observe, logger: l})
	if err != nil {
		process := func(context.Context, string) error { return err }
		return batch.Run(ctx, files, process, emit)
	}
	process := func(ctx context.Context, file string) error {
		_, err := runner.Process(ctx, j.request(file, manual))
		return err
	}
	return batch.Run(ctx, files, process, emit)
}

// tuiStart runs what the operator queued in the batch view, with the style
// config picked there.
func (j batchJob) tuiStart(l *logging.Logger) tui.StartFunc {
	return func(ctx context.Context, tj tui.Job, b *tui.Bridge) batch.Summary {
		job := j
		job.styleFile = tj.ConfigFile
		return job.run(ctx, tj.Files, tj.Manual, b, b.Observe, b.Emit, l)
	}
}

func startBatch(cmd *cobra.Command, args []string, manual, interactive bool) error {
	a, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}
	queue := batch.NewQueue(a.registry.CanProcess)
	for _, arg := range args {
		n, err := queue.AddPath(arg)
		if err != nil {
			return err
		}
		if n == 0 {
			logger.Warnw("nothing to queue", "path", arg)
		}
	}

	job := batchJob{app: a, styleFile: styleConfigFile(cmd), inline: inlineStyle(cmd)}
	ctx := commandContext(cmd)

	if interactive {
		return runInteractiveBatch(ctx, job, queue, manual)
	}
	if queue.Len() == 0 {
		return fmt.Errorf("no supported files found (supported: %v)", a.registry.Extensions())
	}

	out := cmd.OutOrStdout()
	confirm := editor.NewPromptConfirmer(os.Stdin, out)
	summary := job.run(ctx, queue.Files(), manual, confirm, nil, printEvent(out), logger)
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", ErrProcessingFailed, summary.Failed, summary.Processed+summary.Failed)
	}
	return nil
}

func printEvent(out io.Writer) func(batch.Event) {
	return func(e batch.Event) {
		switch e.Kind {
		case batch.EventStarted:
			fmt.Fprintf(out, "Processing (%d/%d): %s\n", e.Index, e.Total, filepath.Base(e.File))
		case batch.EventFinished:
			if e.Err != nil {
				fmt.Fprintf(out, "Failed: %s\n", filepath.Base(e.File))
			} else {
				fmt.Fprintf(out, "Completed: %s\n", filepath.Base(e.File))
			}
		case batch.EventDone:
			fmt.Fprintln(out, e.Summary.String())
		}
	}
}

// runInteractiveBatch hands the terminal to the batch view. Logs go to a
// file for the duration so they do not tear the display.
func runInteractiveBatch(ctx context.Context, job batchJob, queue *batch.Queue, manual bool) error {
	logPath := batchLogPath()
	fileLogger, closeLog, err := logging.NewFileLogger(logPath, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	final, err := tui.Run(tui.Options{
		Queue:      queue,
		Manual:     manual,
		ConfigFile: job.styleFile,
		Start:      job.tuiStart(fileLogger),
		Context:    ctx,
	})
	if err != nil {
		return err
	}
	logger.Infow("batch view closed", "log", logPath, "summary", final.Summary.String())
	return nil
}

func batchLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "substyle", "batch.log")
}
