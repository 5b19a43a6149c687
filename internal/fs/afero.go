package fs

import (
	"os"

	"github.com/spf13/afero"
)

// AferoFS adapts an afero.Fs to FS.
type AferoFS struct {
	base afero.Fs
}

// NewAferoFS wraps base.
func NewAferoFS(base afero.Fs) *AferoFS {
	return &AferoFS{base: base}
}

// NewDryRunFS returns a file system that reads through to the real disk
// but keeps every write in memory.
func NewDryRunFS() *AferoFS {
	disk := afero.NewReadOnlyFs(afero.NewOsFs())
	return NewAferoFS(afero.NewCopyOnWriteFs(disk, afero.NewMemMapFs()))
}

// Base returns the wrapped afero.Fs.
func (a *AferoFS) Base() afero.Fs {
	return a.base
}

func (a *AferoFS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(a.base, path)
}

func (a *AferoFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(a.base, path, data, perm)
}

func (a *AferoFS) Stat(path string) (os.FileInfo, error) {
	return a.base.Stat(path)
}

func (a *AferoFS) Remove(path string) error {
	return a.base.Remove(path)
}

func (a *AferoFS) Chmod(path string, mode os.FileMode) error {
	return a.base.Chmod(path, mode)
}

func (a *AferoFS) Exists(path string) bool {
	ok, err := afero.Exists(a.base, path)
	return err == nil && ok
}

var (
	_ FS = (*RealFS)(nil)
	_ FS = (*MockFS)(nil)
	_ FS = (*AferoFS)(nil)
)
