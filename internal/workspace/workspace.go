// Package workspace manages per-run temporary directories and the output
// files a run produces.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/substyle/internal/logging"
)

// DefaultPrefix names per-run temporary directories.
const DefaultPrefix = "mkv_subtitle_"

var ErrNoWorkspace = errors.New("workspace not created")

// Manager owns at most one temporary directory at a time.
type Manager struct {
	parent string
	prefix string
	logger *logging.Logger

	dir string
}

// NewManager creates directories under parent (the system temp dir when
// empty).
func NewManager(parent, prefix string, logger *logging.Logger) *Manager {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Manager{
		parent: parent,
		prefix: prefix,
		logger: logging.OrNop(logger).Named("workspace"),
	}
}

// Create makes a fresh temporary directory and returns its path.
func (m *Manager) Create() (string, error) {
	if m.parent != "" {
		if err := os.MkdirAll(m.parent, 0o755); err != nil {
			return "", fmt.Errorf("create temp parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(m.parent, m.prefix)
	if err != nil {
		return "", fmt.Errorf("create temp directory: %w", err)
	}
	m.dir = dir
	m.logger.Infow("created temporary directory", "dir", dir)
	return dir, nil
}

// Dir returns the current workspace or "".
func (m *Manager) Dir() string {
	return m.dir
}

// Path joins name onto the workspace directory.
func (m *Manager) Path(name string) (string, error) {
	if m.dir == "" {
		return "", ErrNoWorkspace
	}
	return filepath.Join(m.dir, name), nil
}

// Cleanup removes the workspace. Failures are logged, never returned, and
// the manager is reset either way.
func (m *Manager) Cleanup() {
	dir := m.dir
	m.dir = ""
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Warnw("failed to clean up temporary directory", "dir", dir, "error", err)
		return
	}
	m.logger.Infow("cleaned up temporary directory", "dir", dir)
}

// OutputPath returns <dir>/<stem><suffix><ext> beside input.
func OutputPath(input, suffix string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+suffix+ext)
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
