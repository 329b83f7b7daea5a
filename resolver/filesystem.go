package resolver

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the set of primitives the resolver needs from its host.
// Names are slash-separated. Implementations must be safe for concurrent reads.
type FileSystem interface {
	// IsFile reports whether name exists and is not a directory.
	IsFile(name string) bool
	// Abs returns the canonical absolute form of name.
	Abs(name string) (string, error)
	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)
}

// OSFileSystem is the host operating system's filesystem.
type OSFileSystem struct{}

func (OSFileSystem) IsFile(name string) bool {
	info, err := os.Stat(filepath.FromSlash(name))
	return err == nil && !info.IsDir()
}

func (OSFileSystem) Abs(name string) (string, error) {
	return filepath.Abs(filepath.FromSlash(name))
}

func (OSFileSystem) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.FromSlash(name))
}

// NewIOFS adapts an fs.FS, treated as mounted at "/", to a FileSystem.
// Leading slashes are ignored, so "/a/b.js" and "a/b.js" name the same file.
func NewIOFS(fsys fs.FS) FileSystem {
	return ioFS{fsys: fsys}
}

type ioFS struct {
	fsys fs.FS
}

func (f ioFS) IsFile(name string) bool {
	name, ok := ioName(name)
	if !ok {
		return false
	}
	info, err := fs.Stat(f.fsys, name)
	return err == nil && !info.IsDir()
}

func (f ioFS) Abs(name string) (string, error) {
	name, ok := ioName(name)
	if !ok {
		return "", &fs.PathError{Op: "abs", Path: name, Err: fs.ErrInvalid}
	}
	return "/" + name, nil
}

func (f ioFS) Open(name string) (io.ReadCloser, error) {
	name, ok := ioName(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return f.fsys.Open(name)
}

func ioName(name string) (string, bool) {
	name = strings.TrimLeft(name, "/")
	if name == "" {
		name = "."
	}
	return name, fs.ValidPath(name)
}
