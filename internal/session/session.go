// Package session implements the stateful script session: a directory
// prefix applied to every filename, a single in-progress file being
// authored line by line, and fire-and-forget command launches.
//
// A Session is not safe for concurrent use. Rows are fed to it one at a
// time, in order, by a single harness.
package session

import (
	"context"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/michaeldyrynda/scriptrun/internal/fs"
)

const (
	DefaultPreviewLength = 20

	regularFileMode    os.FileMode = 0644
	executableFileMode os.FileMode = 0755
	executeBits        os.FileMode = 0o111
)

// Error messages raised for session precondition violations.
const (
	MsgAlreadyOpen       = "A file is already opened. It is not possible to open more than one file at any given time."
	MsgNoFileForWriting  = "No open file available for writing."
	MsgNoFileExecutable  = "No open file available to make executable."
	MsgNoFileOpened      = "No file has been opened for writing."
	MsgNoCommand         = "No command given."
	msgWriteAndClose     = "Error writing and closing file with the name: %s"
	msgFileDoesNotExist  = "File \"%s\" does not exist."
	msgUnableToCreate    = "Unable to create file \"%s\""
	msgUnableToRun       = "Unable to run command \"%s\""
	msgUnableToReadMtime = "Unable to read modification time of \"%s\""
)

// LineSeparator terminates every line added to an open file.
var LineSeparator = lineSeparator()

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// executeBitSupported is false where the platform has no executable
// permission bit; exec requests are then ignored rather than failing.
var executeBitSupported = runtime.GOOS != "windows"

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleeper is the default Sleeper.
func TimerSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type openFile struct {
	path       string
	lines      []string
	executable bool
}

// Session holds the directory prefix and the currently open file.
type Session struct {
	directory     string
	open          *openFile
	fs            fs.FS
	launcher      Launcher
	observer      Observer
	sleep         Sleeper
	previewLength int
}

// Option configures a Session.
type Option func(*Session)

// WithFS sets the storage collaborator.
func WithFS(filesystem fs.FS) Option {
	return func(s *Session) { s.fs = filesystem }
}

// WithLauncher sets the process launch collaborator.
func WithLauncher(launcher Launcher) Option {
	return func(s *Session) { s.launcher = launcher }
}

// WithObserver sets where progress messages go.
func WithObserver(observer Observer) Option {
	return func(s *Session) { s.observer = observer }
}

// WithSleeper replaces the sleeper used by WaitFor.
func WithSleeper(sleep Sleeper) Option {
	return func(s *Session) { s.sleep = sleep }
}

// WithPreviewLength sets how many characters of an added line are shown
// in progress messages.
func WithPreviewLength(n int) Option {
	return func(s *Session) { s.previewLength = n }
}

// New creates a Session. Without options it uses the real file system,
// launches real processes and discards progress messages.
func New(opts ...Option) *Session {
	s := &Session{previewLength: DefaultPreviewLength}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.fs == nil {
		s.fs = fs.Default
	}
	if s.launcher == nil {
		s.launcher = NewExecLauncher(s.observer)
	}
	if s.sleep == nil {
		s.sleep = TimerSleeper
	}
	if s.previewLength <= 0 {
		s.previewLength = DefaultPreviewLength
	}
	return s
}

// SetDirectory sets the prefix applied to every later filename and command
// line. A separator is appended unless the path already ends in '/' or '\'.
// An empty path clears the prefix.
func (s *Session) SetDirectory(path string) {
	if path != "" && !strings.HasSuffix(path, "/") && !strings.HasSuffix(path, `\`) {
		path += string(os.PathSeparator)
	}
	s.directory = path
	s.observer.Info("directory set", "directory", path)
}

// Directory returns the current prefix.
func (s *Session) Directory() string {
	return s.directory
}

// Resolve applies the directory prefix to name.
func (s *Session) Resolve(name string) string {
	return s.directory + name
}

// RunCommand prefixes commandLine with the directory, splits it on
// whitespace and launches the first token with the rest as arguments.
// It does not wait for the process.
func (s *Session) RunCommand(ctx context.Context, commandLine string) error {
	tokens := strings.Fields(s.directory + commandLine)
	if len(tokens) == 0 {
		return newCommandError(MsgNoCommand)
	}

	s.observer.Info("running command", "command", tokens[0], "args", tokens[1:])
	if err := s.launcher.Launch(ctx, tokens[0], tokens[1:]); err != nil {
		return wrapCommandError(err, msgUnableToRun, tokens[0])
	}
	return nil
}

// CreateFile creates or truncates name and writes contents verbatim.
func (s *Session) CreateFile(name, contents string) error {
	path := s.Resolve(name)
	s.observer.Info("creating file", "path", path)

	if err := s.fs.WriteFile(path, []byte(contents), regularFileMode); err != nil {
		return wrapCommandError(err, msgUnableToCreate, path)
	}
	return nil
}

// CreateExecutableFile is CreateFile plus the executable bit.
func (s *Session) CreateExecutableFile(name, contents string) error {
	path := s.Resolve(name)
	s.observer.Info("creating executable file", "path", path)

	if err := s.fs.WriteFile(path, []byte(contents), executableFileMode); err != nil {
		return wrapCommandError(err, msgUnableToCreate, path)
	}
	if err := s.applyExecutable(path, true); err != nil {
		return wrapCommandError(err, msgUnableToCreate, path)
	}
	return nil
}

// OpenFile starts a file session for name. Nothing touches storage until
// WriteAndClose.
func (s *Session) OpenFile(name string) error {
	if s.open != nil {
		return newCommandError(MsgAlreadyOpen)
	}

	path := strings.TrimSpace(s.Resolve(name))
	s.open = &openFile{path: path}
	s.observer.Info("opening file", "path", path)
	return nil
}

// AddLine queues text, trimmed and terminated by LineSeparator.
func (s *Session) AddLine(text string) error {
	if s.open == nil {
		return newCommandError(MsgNoFileForWriting)
	}

	s.observer.Info("adding line to file", "content", preview(text, s.previewLength))
	s.open.lines = append(s.open.lines, strings.TrimSpace(text)+LineSeparator)
	return nil
}

// MakeExecutable marks the open file to be written executable.
func (s *Session) MakeExecutable() error {
	if s.open == nil {
		return newCommandError(MsgNoFileExecutable)
	}

	s.open.executable = true
	s.observer.Debug("file marked executable", "path", s.open.path)
	return nil
}

// WriteAndClose writes every queued line to the open file and closes the
// session. If storage fails the session stays open so the caller can retry.
func (s *Session) WriteAndClose() error {
	if s.open == nil {
		return newCommandError(MsgNoFileOpened)
	}

	f := s.open
	s.observer.Info("writing and closing file", "path", f.path, "lines", len(f.lines))

	var content strings.Builder
	for _, line := range f.lines {
		content.WriteString(line)
	}

	mode := regularFileMode
	if f.executable {
		mode = executableFileMode
	}
	if err := s.fs.WriteFile(f.path, []byte(content.String()), mode); err != nil {
		return wrapCommandError(err, msgWriteAndClose, f.path)
	}
	if err := s.applyExecutable(f.path, f.executable); err != nil {
		return wrapCommandError(err, msgWriteAndClose, f.path)
	}

	s.open = nil
	return nil
}

// DeleteFile removes name. It fails if name does not exist and reports
// false if storage refused the removal.
func (s *Session) DeleteFile(name string) (bool, error) {
	path := s.Resolve(name)
	s.observer.Info("deleting file", "path", path)

	// The check and the removal are not atomic; a concurrent delete in
	// between surfaces as a false result.
	if !s.fs.Exists(path) {
		return false, newCommandError(msgFileDoesNotExist, path)
	}
	if err := s.fs.Remove(path); err != nil {
		s.observer.Warn("delete failed", "path", path, "err", err)
		return false, nil
	}
	return true, nil
}

// FileMutatedAfter reports whether name was modified after epochSeconds.
// A missing file counts as modified before every instant.
func (s *Session) FileMutatedAfter(name string, epochSeconds int64) (bool, error) {
	modified, exists, err := s.modTimeMillis(name)
	if err != nil || !exists {
		return false, err
	}
	return modified > epochMillis(epochSeconds), nil
}

// FileMutatedBefore reports whether name was modified before epochSeconds.
// A missing file counts as modified before every instant.
func (s *Session) FileMutatedBefore(name string, epochSeconds int64) (bool, error) {
	modified, exists, err := s.modTimeMillis(name)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	return modified < epochMillis(epochSeconds), nil
}

// WaitFor pauses for seconds. An interruption ends the wait early and is
// only reported to the observer.
func (s *Session) WaitFor(ctx context.Context, seconds int) {
	if seconds <= 0 {
		return
	}

	s.observer.Info("waiting", "seconds", seconds)
	if err := s.sleep(ctx, time.Duration(seconds)*time.Second); err != nil {
		s.observer.Warn("wait interrupted", "err", err)
	}
}

// IsOpen reports whether a file session is active.
func (s *Session) IsOpen() bool {
	return s.open != nil
}

// OpenPath returns the path of the open file, or "" when none is open.
func (s *Session) OpenPath() string {
	if s.open == nil {
		return ""
	}
	return s.open.path
}

// PendingLines returns a copy of the lines queued for the open file.
func (s *Session) PendingLines() []string {
	if s.open == nil {
		return nil
	}
	return append([]string(nil), s.open.lines...)
}

// ExecutableRequested reports whether the open file will be written
// executable.
func (s *Session) ExecutableRequested() bool {
	return s.open != nil && s.open.executable
}

// FS returns the storage collaborator.
func (s *Session) FS() fs.FS {
	return s.fs
}

func (s *Session) modTimeMillis(name string) (int64, bool, error) {
	path := s.Resolve(name)
	info, err := s.fs.Stat(path)
	if fs.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapCommandError(err, msgUnableToReadMtime, path)
	}
	return info.ModTime().UnixMilli(), true, nil
}

// applyExecutable sets or clears every execute bit on path, leaving the
// other permission bits alone.
func (s *Session) applyExecutable(path string, executable bool) error {
	if !executeBitSupported {
		return nil
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()
	want := perm &^ executeBits
	if executable {
		want = perm | executeBits
	}
	if want == perm {
		return nil
	}
	return s.fs.Chmod(path, want)
}

// epochMillis converts seconds to milliseconds, saturating at the int64
// bounds so instants beyond them compare as the far future or past.
func epochMillis(seconds int64) int64 {
	switch {
	case seconds > math.MaxInt64/1000:
		return math.MaxInt64
	case seconds < math.MinInt64/1000:
		return math.MinInt64
	}
	return seconds * 1000
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
