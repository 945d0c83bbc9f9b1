// Package security confines local document access to one directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that resolve outside the
// document directory
var ErrOutsideDirectory = errors.New("path is outside the document directory")

// PathValidator resolves document paths against a configured directory
type PathValidator struct {
	directory string
}

// NewPathValidator creates a validator rooted at directory. The directory
// does not need to exist yet.
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, fmt.Errorf("document directory cannot be empty")
	}

	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document directory: %w", err)
	}

	return &PathValidator{directory: filepath.Clean(abs)}, nil
}

// Directory returns the absolute document directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// Resolve returns the absolute path of a PDF inside the document directory.
// Relative paths are taken relative to the directory. Symlinks are followed
// and must also stay inside it.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(strings.TrimSpace(path), "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("not a PDF file: %s", path)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.directory, path)
	}
	path = filepath.Clean(path)

	if !v.IsWithin(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return path, nil
}

// IsWithin reports whether path, and the file it links to if it is a
// symlink, lie inside the document directory
func (v *PathValidator) IsWithin(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs = filepath.Clean(abs)

	dirs := []string{v.directory}
	if resolved, err := filepath.EvalSymlinks(v.directory); err == nil && resolved != v.directory {
		dirs = append(dirs, resolved)
	}

	if !within(abs, dirs) {
		return false
	}

	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return false
		}
		return within(target, dirs)
	}
	return true
}

func within(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
