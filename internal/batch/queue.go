// Package batch queues video files and runs them through the pipeline one
// at a time.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Queue is an ordered, de-duplicated list of files. It is not safe for
// concurrent use.
type Queue struct {
	accept func(string) bool
	files  []string
	seen   map[string]struct{}
}

// NewQueue builds a queue; accept filters files found while walking
// folders.
func NewQueue(accept func(path string) bool) *Queue {
	return &Queue{accept: accept, seen: make(map[string]struct{})}
}

// Add appends path unless it is already queued.
func (q *Queue) Add(path string) bool {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if _, ok := q.seen[key]; ok {
		return false
	}
	q.seen[key] = struct{}{}
	q.files = append(q.files, path)
	return true
}

// AddPath queues a file, or every accepted file below a folder. It returns
// how many files were newly queued.
func (q *Queue) AddPath(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if q.Add(path) {
			return 1, nil
		}
		return 0, nil
	}
	return q.AddFolder(path)
}

// AddFolder walks root recursively, queueing accepted regular files.
func (q *Queue) AddFolder(root string) (int, error) {
	added := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if q.accept != nil && !q.accept(path) {
			return nil
		}
		if q.Add(path) {
			added++
		}
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("scan %s: %w", root, err)
	}
	return added, nil
}

// Files returns a copy of the queued paths.
func (q *Queue) Files() []string {
	return append([]string(nil), q.files...)
}

func (q *Queue) Len() int {
	return len(q.files)
}

func (q *Queue) Clear() {
	q.files = nil
	q.seen = make(map[string]struct{})
}
