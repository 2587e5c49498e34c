package subtitle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/substyle/internal/logging"
)

// runs ffmpeg -i in -c:s ass -y out
type transcodeFunc func(ffmpegPath, in, out string) error

// Converter turns SRT, WebVTT and anything else ffmpeg reads into ASS.
type Converter struct {
	// FFmpegPath resolves the transcoder. A resolution error switches to the
	// in-process SRT/VTT writer.
	FFmpegPath func() (string, error)
	Logger     *logging.Logger

	transcode transcodeFunc
}

func NewConverter(ffmpegPath func() (string, error), logger *logging.Logger) *Converter {
	return &Converter{
		FFmpegPath: ffmpegPath,
		Logger:     logging.OrNop(logger).Named("convert"),
		transcode:  ffmpegTranscode,
	}
}

// ToASS converts in to an ASS script at out. A failed ffmpeg run is an
// error; it never falls back.
func (c *Converter) ToASS(ctx context.Context, in, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger := logging.OrNop(c.Logger)

	ffmpegPath, err := c.resolve()
	if err != nil {
		logger.Warnw("ffmpeg unavailable, converting natively", "error", err)
		return c.native(in, out)
	}

	transcode := c.transcode
	if transcode == nil {
		transcode = ffmpegTranscode
	}

	logger.Infow("converting subtitle to ASS", "input", in, "output", out)
	if err := transcode(ffmpegPath, in, out); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return nil
}

func (c *Converter) resolve() (string, error) {
	if c.FFmpegPath == nil {
		return "", fmt.Errorf("no ffmpeg resolver configured")
	}
	return c.FFmpegPath()
}

func (c *Converter) native(in, out string) error {
	sub, err := ParseFile(in)
	if err != nil {
		return fmt.Errorf("native conversion failed: %w", err)
	}
	writer := &ASSWriter{
		Title: strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)),
	}
	if err := writer.WriteFile(sub, out); err != nil {
		return fmt.Errorf("native conversion failed: %w", err)
	}
	logging.OrNop(c.Logger).Infow("converted subtitle natively",
		"format", sub.Format, "cues", len(sub.Entries))
	return nil
}

func ffmpegTranscode(ffmpegPath, in, out string) error {
	var stderr bytes.Buffer
	err := ffmpeg.Input(in).
		Output(out, ffmpeg.KwArgs{"c:s": "ass"}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		if msg := lastLines(stderr.String(), 5); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
