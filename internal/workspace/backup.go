package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/mgpai22/substyle/internal/logging"
)

// DefaultBackupDir is created beside the original file.
const DefaultBackupDir = "_backups"

const lockRetryDelay = 100 * time.Millisecond

// BackupAndReplace moves original into <dir>/<backupDir>/ as
// <stem>_original[_N]<ext>, then moves processed to original's path. It
// returns the backup path.
//
// The two moves are not atomic. If the second one fails the backup is moved
// back; a crash in between leaves only the backup.
func BackupAndReplace(ctx context.Context, original, processed, backupDir string, logger *logging.Logger) (string, error) {
	logger = logging.OrNop(logger).Named("backup")
	if backupDir == "" {
		backupDir = DefaultBackupDir
	}

	dir := filepath.Join(filepath.Dir(original), backupDir)
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("acquire backup lock: %w", err)
	}
	if !locked {
		return "", errors.New("acquire backup lock: not acquired")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warnw("failed to release backup lock", "error", err)
		}
	}()

	backupPath := nextBackupPath(dir, original)

	logger.Infow("backing up original file", "backup", backupPath)
	if err := moveFile(original, backupPath); err != nil {
		return "", fmt.Errorf("back up original: %w", err)
	}

	logger.Infow("moving processed file into place", "path", original)
	if err := moveFile(processed, original); err != nil {
		if !IsRegularFile(original) {
			if restoreErr := moveFile(backupPath, original); restoreErr != nil {
				logger.Errorw("failed to restore original file", "error", restoreErr)
			} else {
				logger.Infow("restored original file after failure")
			}
		}
		return "", fmt.Errorf("replace original: %w", err)
	}

	logger.Infow("replaced original with processed version", "file", filepath.Base(original), "backup", backupPath)
	return backupPath, nil
}

func nextBackupPath(dir, original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, stem+"_original"+ext)
	for n := 1; pathExists(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_original_%d%s", stem, n, ext))
	}
	return candidate
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// renames, falling back to copy+remove across filesystems
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
