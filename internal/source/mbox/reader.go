// Package mbox reads and writes Unix mbox archives of tracker mail.
package mbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	gombox "github.com/emersion/go-mbox"

	"github.com/nhle/bugzilla-recovery/internal/source"
)

// Archive reads messages from one mbox file in file order.
type Archive struct {
	path string
	file *os.File
	r    *gombox.Reader
}

var _ source.Archive = (*Archive)(nil)

// Open opens the mbox file at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox %s: %w", path, err)
	}
	return &Archive{path: path, file: f, r: gombox.NewReader(f)}, nil
}

// Type returns the archive kind.
func (a *Archive) Type() source.SourceType {
	return source.SourceTypeMbox
}

// Name returns the file path.
func (a *Archive) Name() string {
	return a.path
}

// Next returns the next message, or io.EOF after the last one. An empty
// file holds no messages.
func (a *Archive) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mr, err := a.r.NextMessage()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if errors.Is(err, gombox.ErrInvalidFormat) {
		if info, statErr := a.file.Stat(); statErr == nil && info.Size() == 0 {
			return nil, io.EOF
		}
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a.path, err)
	}

	raw, err := io.ReadAll(mr)
	if err != nil {
		return nil, fmt.Errorf("reading message from %s: %w", a.path, err)
	}
	return raw, nil
}

// Close closes the file.
func (a *Archive) Close() error {
	return a.file.Close()
}

// Expand resolves path to the archive files it names: the path itself
// for a file, or the regular files of a directory sorted by name.
// Subdirectories are not descended into.
func Expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
