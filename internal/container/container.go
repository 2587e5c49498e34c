// Package container dispatches video files to the tools that can read and
// rewrite their subtitle tracks.
//
// A Capability bundles the four operations the pipeline needs for one
// container family. Capabilities are registered once into an immutable
// Registry, keyed by lowercase file extension.
package container

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNotSupported       = errors.New("unsupported container format")
	ErrDuplicateExtension = errors.New("extension already registered")
)

// Track is one subtitle track as reported by a container tool.
type Track struct {
	ID       int
	Codec    string
	Language string
	Name     string
	Default  bool
}

// MergeRequest describes a remux that replaces every subtitle track of Input
// with Subtitle.
type MergeRequest struct {
	Input     string
	Subtitle  string
	Output    string
	Language  string
	TrackName string
}

// Capability is the set of operations available for one container family.
type Capability struct {
	Name       string
	Extensions []string

	ToolsAvailable func(ctx context.Context) bool
	Analyze        func(ctx context.Context, path string) ([]Track, error)
	Extract        func(ctx context.Context, path string, trackID int, out string) error
	Merge          func(ctx context.Context, req MergeRequest) error
}

func (c Capability) validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return errors.New("capability name is required")
	case len(c.Extensions) == 0:
		return fmt.Errorf("capability %s: no extensions", c.Name)
	case c.ToolsAvailable == nil, c.Analyze == nil, c.Extract == nil, c.Merge == nil:
		return fmt.Errorf("capability %s: missing operation", c.Name)
	}
	return nil
}

// Registry maps extensions to capabilities. It is read-only after NewRegistry.
type Registry struct {
	byExt map[string]Capability
	caps  []Capability
}

// NewRegistry registers caps in order. Two capabilities claiming the same
// extension is an error.
func NewRegistry(caps ...Capability) (*Registry, error) {
	r := &Registry{byExt: make(map[string]Capability)}
	for _, c := range caps {
		if err := c.validate(); err != nil {
			return nil, err
		}
		for _, ext := range c.Extensions {
			key := normalizeExt(ext)
			if key == "" {
				return nil, fmt.Errorf("capability %s: empty extension", c.Name)
			}
			if prev, ok := r.byExt[key]; ok {
				return nil, fmt.Errorf("%w: .%s claimed by %s and %s", ErrDuplicateExtension, key, prev.Name, c.Name)
			}
			r.byExt[key] = c
		}
		r.caps = append(r.caps, c)
	}
	return r, nil
}

// Resolve returns the capability for path's extension.
func (r *Registry) Resolve(path string) (Capability, error) {
	key := normalizeExt(filepath.Ext(path))
	if c, ok := r.byExt[key]; ok && key != "" {
		return c, nil
	}
	if key == "" {
		return Capability{}, fmt.Errorf("%w: %s has no extension", ErrNotSupported, filepath.Base(path))
	}
	return Capability{}, fmt.Errorf("%w: .%s", ErrNotSupported, key)
}

// CanProcess reports whether path resolves to a registered capability.
func (r *Registry) CanProcess(path string) bool {
	_, err := r.Resolve(path)
	return err == nil
}

// Extensions returns every registered extension, sorted, without dots.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Capabilities returns capabilities in registration order.
func (r *Registry) Capabilities() []Capability {
	return append([]Capability(nil), r.caps...)
}

// AnyToolsAvailable reports whether at least one capability can run.
func (r *Registry) AnyToolsAvailable(ctx context.Context) bool {
	for _, c := range r.caps {
		if c.ToolsAvailable(ctx) {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
