package ffmpeg

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func notFound(string) (string, error) {
	return "", errors.New("not found")
}

func TestResolverPrefersEnv(t *testing.T) {
	t.Setenv(EnvPath, "/opt/ffmpeg/bin/ffmpeg")
	r := NewResolver("", false, nil)
	r.lookPath = notFound

	got, err := r.Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected env path, got %s", got)
	}
}

func TestResolverConfiguredPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(bin, false, nil)
	r.lookPath = notFound
	got, err := r.Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if got != bin {
		t.Errorf("expected %s, got %s", bin, got)
	}

	missing := NewResolver(filepath.Join(dir, "nope", "ffmpeg"), true, nil)
	missing.lookPath = notFound
	if _, err := missing.Path(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolverUsesPATH(t *testing.T) {
	t.Setenv(EnvPath, "")
	r := NewResolver("", false, nil)
	r.lookPath = func(name string) (string, error) {
		if name == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", errors.New("not found")
	}

	got, err := r.Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if got != "/usr/bin/ffmpeg" {
		t.Errorf("expected /usr/bin/ffmpeg, got %s", got)
	}
}

func TestResolverNoDownload(t *testing.T) {
	t.Setenv(EnvPath, "")
	r := NewResolver("", false, nil)
	r.CacheDir = t.TempDir()
	r.lookPath = notFound
	r.download = func(string, string) error {
		t.Fatal("download must not run when disabled")
		return nil
	}

	if _, err := r.Path(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolverCachedBinary(t *testing.T) {
	t.Setenv(EnvPath, "")
	r := NewResolver("", false, nil)
	r.CacheDir = t.TempDir()
	r.lookPath = notFound

	installDir, _ := r.installDir()
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(installDir, "ffmpeg"+executableSuffix())
	if err := os.WriteFile(bin, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := r.Path()
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if got != bin {
		t.Errorf("expected %s, got %s", bin, got)
	}
}

func TestResolverMemoizes(t *testing.T) {
	t.Setenv(EnvPath, "")
	calls := 0
	r := NewResolver("", false, nil)
	r.lookPath = func(string) (string, error) {
		calls++
		return "/usr/bin/ffmpeg", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := r.Path(); err != nil {
			t.Fatalf("Path failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 lookup, got %d", calls)
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("bundle/ffmpeg" + executableSuffix())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("ffmpeg-binary")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	installDir := filepath.Join(dir, "install")
	if err := extractArchive(archivePath, installDir); err != nil {
		t.Fatalf("extractArchive failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(installDir, "ffmpeg"+executableSuffix()))
	if err != nil {
		t.Fatalf("expected extracted binary: %v", err)
	}
	if string(data) != "ffmpeg-binary" {
		t.Errorf("unexpected binary content %q", data)
	}
}

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}
	for _, tt := range tests {
		got, err := assetForPlatform(tt.goos, tt.goarch)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%s: unexpected error %v", tt.goos, tt.goarch, err)
		}
		if got != tt.want {
			t.Errorf("%s/%s: expected %q, got %q", tt.goos, tt.goarch, tt.want, got)
		}
	}
}
