// Package ffmpeg resolves the ffmpeg binary used for subtitle transcoding.
package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/substyle/internal/logging"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	// EnvPath overrides every other lookup.
	EnvPath = "SUBSTYLE_FFMPEG_PATH"
)

// ErrNotFound is returned when no ffmpeg binary can be located and
// downloading is disabled or unsupported on this platform.
var ErrNotFound = errors.New("ffmpeg binary not found")

// Resolver locates ffmpeg once per process: explicit path, PATH, the
// user cache, then an ffbinaries download when allowed.
type Resolver struct {
	Configured    string
	AllowDownload bool
	CacheDir      string
	Logger        *logging.Logger

	lookPath func(string) (string, error)
	download func(assetName, installDir string) error

	once sync.Once
	path string
	err  error
}

func NewResolver(configured string, allowDownload bool, logger *logging.Logger) *Resolver {
	return &Resolver{
		Configured:    configured,
		AllowDownload: allowDownload,
		Logger:        logging.OrNop(logger).Named("ffmpeg"),
	}
}

// Path returns the resolved binary, memoizing the first result.
func (r *Resolver) Path() (string, error) {
	r.once.Do(func() {
		r.path, r.err = r.resolve()
		if r.err == nil {
			r.logger().Debugw("resolved ffmpeg", "path", r.path)
		}
	})
	return r.path, r.err
}

func (r *Resolver) logger() *logging.Logger {
	return logging.OrNop(r.Logger)
}

func (r *Resolver) resolve() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}

	lookPath := r.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if r.Configured != "" {
		if strings.ContainsRune(r.Configured, os.PathSeparator) {
			if fileExists(r.Configured) {
				return r.Configured, nil
			}
			return "", fmt.Errorf("%w: configured path %s", ErrNotFound, r.Configured)
		}
		if found, err := lookPath(r.Configured); err == nil {
			return found, nil
		}
	}

	if found, err := lookPath("ffmpeg"); err == nil {
		return found, nil
	}

	installDir, err := r.installDir()
	if err != nil {
		return "", err
	}
	ffmpegPath := filepath.Join(installDir, "ffmpeg"+executableSuffix())
	if fileExists(ffmpegPath) {
		return ffmpegPath, nil
	}

	if !r.AllowDownload {
		return "", ErrNotFound
	}

	assetName, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	r.logger().Infow("downloading ffmpeg", "asset", assetName, "dir", installDir)
	download := r.download
	if download == nil {
		download = downloadAndExtract
	}
	if err := download(assetName, installDir); err != nil {
		return "", err
	}

	if !fileExists(ffmpegPath) {
		return "", errors.New("ffmpeg binary not found after extraction")
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(ffmpegPath, 0o755); err != nil {
			return "", fmt.Errorf("chmod ffmpeg: %w", err)
		}
	}

	return ffmpegPath, nil
}

func (r *Resolver) installDir() (string, error) {
	cacheDir := r.CacheDir
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil || dir == "" {
			dir = os.TempDir()
		}
		cacheDir = dir
	}
	return filepath.Join(
		cacheDir,
		"substyle",
		"ffmpeg",
		ffmpegReleaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	), nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf("unsupported platform for ffmpeg download: %s/%s", goos, goarch)
	}
}

func downloadAndExtract(assetName, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp("", "substyle-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

// pulls the ffmpeg executable out of an ffbinaries zip
func extractArchive(archivePath, installDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	for _, file := range zipReader.File {
		if !isFFmpegBinary(filepath.Base(file.Name)) {
			continue
		}
		dest := filepath.Join(installDir, "ffmpeg"+executableSuffix())
		return extractZipFile(file, dest)
	}

	return errors.New("ffmpeg archive missing ffmpeg binary")
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create ffmpeg output dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func isFFmpegBinary(name string) bool {
	name = strings.ToLower(name)
	return name == "ffmpeg" || name == "ffmpeg.exe"
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
