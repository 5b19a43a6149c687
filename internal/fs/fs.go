// Package fs provides the file system abstraction the script session writes
// through. Production code uses RealFS; tests use MockFS; dry runs use an
// AferoFS layered over the real disk so nothing is persisted.
package fs

import (
	"errors"
	"os"
)

// FS defines the file system operations a script session needs.
// Implementations can provide real file system access, an in-memory
// mock for testing, or an afero-backed overlay.
type FS interface {
	// ReadFile reads the entire file at path and returns its contents.
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or truncates the file at path and writes data to it.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Stat returns file info for the given path.
	Stat(path string) (os.FileInfo, error)

	// Remove removes the file or empty directory at path.
	Remove(path string) error

	// Chmod changes the mode of the named file.
	Chmod(path string, mode os.FileMode) error

	// Exists reports whether anything exists at path.
	Exists(path string) bool
}

// RealFS implements FS using the actual operating system.
// This is the production implementation.
type RealFS struct{}

// ReadFile reads the entire file at path.
func (r *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to the file at path with permissions.
func (r *RealFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Stat returns file info for the given path.
func (r *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Remove removes the file or directory at path.
func (r *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// Chmod changes the mode of the named file.
func (r *RealFS) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

// Exists reports whether anything exists at path.
func (r *RealFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Default is the default RealFS instance for convenience.
var Default = &RealFS{}

// IsNotExist reports whether err says a path is missing. It understands
// the errors produced by every FS implementation in this package.
func IsNotExist(err error) bool {
	return err != nil && errors.Is(err, os.ErrNotExist)
}
