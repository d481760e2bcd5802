// Package localfs resolves the local paths given to an upload into the files
// to send, skipping hidden entries the same way everywhere.
package localfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IsHidden reports whether the last element of path is a dot file.
func IsHidden(path string) bool {
	return IsHiddenName(filepath.Base(path))
}

// IsHiddenName reports whether name starts with a dot. "." and ".." are not
// hidden.
func IsHiddenName(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}

// FileEntry represents a file or directory in the local filesystem.
type FileEntry struct {
	Path    string      // Full path to the file
	Name    string      // Base name of the file
	Size    int64       // Size in bytes (0 for directories)
	IsDir   bool        // True if this is a directory
	ModTime time.Time   // Last modification time
	Mode    fs.FileMode // File mode/permissions
}

// WalkFunc is the callback signature for Walk.
// Return filepath.SkipDir to skip a directory, or any other error to stop walking.
type WalkFunc func(entry FileEntry) error

// Walk traverses a directory tree depth-first, calling fn for each file and
// directory. Entries that cannot be read are skipped.
func Walk(root string, opts WalkOptions, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()

		// The root itself is never filtered
		if path != root && !opts.IncludeHidden && IsHiddenName(name) {
			if d.IsDir() && opts.SkipHiddenDirs {
				return filepath.SkipDir
			}
			if !d.IsDir() {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		return fn(FileEntry{
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			IsDir:   d.IsDir(),
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		})
	})
}

// WalkFiles is Walk restricted to regular files.
func WalkFiles(root string, opts WalkOptions, fn WalkFunc) error {
	return Walk(root, opts, func(entry FileEntry) error {
		if entry.IsDir || !entry.Mode.IsRegular() {
			return nil
		}
		return fn(entry)
	})
}

// Expand turns command-line arguments into the regular files they name, in
// argument order. Directories are walked in lexical order when
// opts.Recursive is set. A path that appears twice is kept once.
func Expand(args []string, opts ExpandOptions) ([]FileEntry, error) {
	seen := make(map[string]bool)
	var out []FileEntry

	add := func(e FileEntry) {
		key := filepath.Clean(e.Path)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, e)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}

		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				return nil, fmt.Errorf("%s is not a regular file", arg)
			}
			add(FileEntry{
				Path:    arg,
				Name:    info.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Mode:    info.Mode(),
			})
			continue
		}

		if !opts.Recursive {
			return nil, fmt.Errorf("%s is a directory (use --recursive to upload its contents)", arg)
		}

		walkOpts := WalkOptions{IncludeHidden: opts.IncludeHidden, SkipHiddenDirs: !opts.IncludeHidden}
		if err := WalkFiles(arg, walkOpts, func(e FileEntry) error {
			add(e)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	return out, nil
}
