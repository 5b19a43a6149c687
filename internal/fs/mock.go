package fs

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MockFileInfo implements os.FileInfo for mock files.
type MockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (m *MockFileInfo) Name() string       { return m.name }
func (m *MockFileInfo) Size() int64        { return m.size }
func (m *MockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *MockFileInfo) ModTime() time.Time { return m.modTime }
func (m *MockFileInfo) IsDir() bool        { return m.isDir }
func (m *MockFileInfo) Sys() interface{}   { return nil }

// MockFS implements FS using an in-memory file system for testing.
// Every write stamps the file with the mock clock, and errors can be
// injected per path with FailOn.
type MockFS struct {
	mu       sync.RWMutex
	files    map[string][]byte
	perms    map[string]os.FileMode
	modTimes map[string]time.Time
	dirs     map[string]bool
	failures map[string]error
	now      func() time.Time
}

// NewMockFS creates a new MockFS with empty storage.
func NewMockFS() *MockFS {
	return &MockFS{
		files:    make(map[string][]byte),
		perms:    make(map[string]os.FileMode),
		modTimes: make(map[string]time.Time),
		dirs:     make(map[string]bool),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// SetClock replaces the clock used to stamp modification times.
func (m *MockFS) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// FailOn makes every mutating or reading call on path return err.
// Passing a nil error clears the injection.
func (m *MockFS) FailOn(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleanPath := filepath.Clean(path)
	if err == nil {
		delete(m.failures, cleanPath)
		return
	}
	m.failures[cleanPath] = err
}

func (m *MockFS) failure(op, path string) error {
	if err, ok := m.failures[filepath.Clean(path)]; ok {
		return &os.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func notFound(op, path string) error {
	return &os.PathError{Op: op, Path: path, Err: os.ErrNotExist}
}

// ReadFile reads the file at path from memory.
func (m *MockFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("read", path); err != nil {
		return nil, err
	}
	cleanPath := filepath.Clean(path)
	data, ok := m.files[cleanPath]
	if !ok {
		return nil, notFound("read", path)
	}
	// Return a copy to prevent external modification
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// WriteFile creates or truncates the file at path in memory. Like the real
// file system, perm only applies when the file is created.
func (m *MockFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("open", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	if m.dirs[cleanPath] {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrExist}
	}

	// Auto-create parent directories for convenience
	dir := filepath.Dir(cleanPath)
	if dir != "." && dir != "/" {
		m.dirs[dir] = true
	}

	if _, exists := m.files[cleanPath]; !exists {
		m.perms[cleanPath] = perm
	}
	m.files[cleanPath] = make([]byte, len(data))
	copy(m.files[cleanPath], data)
	m.modTimes[cleanPath] = m.now()

	return nil
}

// Stat returns file info for the given path.
func (m *MockFS) Stat(path string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("stat", path); err != nil {
		return nil, err
	}
	cleanPath := filepath.Clean(path)

	if data, ok := m.files[cleanPath]; ok {
		perm := m.perms[cleanPath]
		if perm == 0 {
			perm = 0644
		}
		return &MockFileInfo{
			name:    filepath.Base(cleanPath),
			size:    int64(len(data)),
			mode:    perm,
			modTime: m.modTimes[cleanPath],
		}, nil
	}

	if m.dirs[cleanPath] || cleanPath == "." {
		return &MockFileInfo{
			name:    filepath.Base(cleanPath),
			mode:    0755 | os.ModeDir,
			modTime: m.modTimes[cleanPath],
			isDir:   true,
		}, nil
	}

	return nil, notFound("stat", path)
}

// Remove removes the file or directory at path.
func (m *MockFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("remove", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	_, isFile := m.files[cleanPath]
	if !isFile && !m.dirs[cleanPath] {
		return notFound("remove", path)
	}
	delete(m.files, cleanPath)
	delete(m.perms, cleanPath)
	delete(m.modTimes, cleanPath)
	delete(m.dirs, cleanPath)
	return nil
}

// Chmod changes the mode of the named file.
func (m *MockFS) Chmod(path string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("chmod", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	if _, ok := m.files[cleanPath]; ok {
		m.perms[cleanPath] = mode
		return nil
	}
	return notFound("chmod", path)
}

// Exists reports whether a file or directory exists at path.
func (m *MockFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cleanPath := filepath.Clean(path)
	_, isFile := m.files[cleanPath]
	return isFile || m.dirs[cleanPath]
}

// AddFile adds a file with content to the mock FS for testing.
func (m *MockFS) AddFile(path string, content []byte, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleanPath := filepath.Clean(path)
	m.files[cleanPath] = make([]byte, len(content))
	copy(m.files[cleanPath], content)
	m.perms[cleanPath] = perm
	m.modTimes[cleanPath] = m.now()
}

// AddDir adds a directory to the mock FS for testing.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// FileExists checks if a file exists in the mock FS.
func (m *MockFS) FileExists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// DirExists checks if a directory exists in the mock FS.
func (m *MockFS) DirExists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(path)]
}

// Files returns the paths of all files in the mock FS.
func (m *MockFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	return paths
}

// Reset clears all files and directories from the mock FS.
func (m *MockFS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = make(map[string][]byte)
	m.perms = make(map[string]os.FileMode)
	m.modTimes = make(map[string]time.Time)
	m.dirs = make(map[string]bool)
	m.failures = make(map[string]error)
}
