// Package upload sends a batch of local files to the backend one at a time
// and summarizes where they landed.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mediastore/mediastore-cli/internal/localfs"
)

// LocalFile is one file selected for upload. Open is called once per attempt,
// so a retried upload starts from the first byte again.
type LocalFile struct {
	Name string // upload name; only the base name is sent
	Size int64  // -1 when unknown
	Open func() (io.ReadCloser, error)
}

// FromPath describes the file at path. Directories are rejected.
func FromPath(path string) (LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return LocalFile{}, fmt.Errorf("%s is a directory", path)
	}
	return fromDisk(path, info.Size()), nil
}

// FromEntry describes a file found by localfs.Expand.
func FromEntry(entry localfs.FileEntry) LocalFile {
	return fromDisk(entry.Path, entry.Size)
}

// FromEntries converts expanded entries in order.
func FromEntries(entries []localfs.FileEntry) []LocalFile {
	files := make([]LocalFile, len(entries))
	for i, e := range entries {
		files[i] = FromEntry(e)
	}
	return files
}

func fromDisk(path string, size int64) LocalFile {
	return LocalFile{
		Name: path,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
			}
			return f, nil
		},
	}
}

// FromBytes uploads data under name. Useful for generated content and tests.
func FromBytes(name string, data []byte) LocalFile {
	return LocalFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DisplayName is the name the backend will see.
func (f LocalFile) DisplayName() string {
	return filepath.Base(f.Name)
}
