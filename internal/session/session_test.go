package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaeldyrynda/scriptrun/internal/fs"
)

type recordingObserver struct {
	messages []string
	keyvals  [][]interface{}
}

func (o *recordingObserver) record(msg interface{}, keyvals []interface{}) {
	o.messages = append(o.messages, fmt.Sprint(msg))
	o.keyvals = append(o.keyvals, keyvals)
}

func (o *recordingObserver) Debug(msg interface{}, kv ...interface{}) { o.record(msg, kv) }
func (o *recordingObserver) Info(msg interface{}, kv ...interface{})  { o.record(msg, kv) }
func (o *recordingObserver) Warn(msg interface{}, kv ...interface{})  { o.record(msg, kv) }
func (o *recordingObserver) Error(msg interface{}, kv ...interface{}) { o.record(msg, kv) }

func newMockSession(t *testing.T) (*Session, *fs.MockFS, *RecordingLauncher) {
	t.Helper()
	mock := fs.NewMockFS()
	launcher := &RecordingLauncher{}
	return New(WithFS(mock), WithLauncher(launcher)), mock, launcher
}

func requireCommandError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	var ce *CommandError
	require.True(t, errors.As(err, &ce), "expected *CommandError, got %T", err)
	if message != "" {
		assert.Equal(t, message, ce.Message)
	}
}

func TestSession_SetDirectory(t *testing.T) {
	sep := string(os.PathSeparator)

	t.Run("appends separator when missing", func(t *testing.T) {
		s, _, _ := newMockSession(t)
		s.SetDirectory("/tmp/t")
		assert.Equal(t, "/tmp/t"+sep, s.Directory())
		assert.Equal(t, "/tmp/t"+sep+"a.txt", s.Resolve("a.txt"))
	})

	t.Run("keeps trailing forward slash", func(t *testing.T) {
		s, _, _ := newMockSession(t)
		s.SetDirectory("/tmp/t/")
		assert.Equal(t, "/tmp/t/", s.Directory())
	})

	// Either trailing separator is accepted.
	t.Run("keeps trailing backslash", func(t *testing.T) {
		s, _, _ := newMockSession(t)
		s.SetDirectory(`C:\work\`)
		assert.Equal(t, `C:\work\`, s.Directory())
	})

	t.Run("empty path clears the prefix", func(t *testing.T) {
		s, _, _ := newMockSession(t)
		s.SetDirectory("/tmp/t")
		s.SetDirectory("")
		assert.Equal(t, "", s.Directory())
		assert.Equal(t, "a.txt", s.Resolve("a.txt"))
	})

	t.Run("prefix applies to every filename operation", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		s.SetDirectory("/work")
		want := "/work" + sep + "f.txt"

		require.NoError(t, s.CreateFile("f.txt", "x"))
		assert.True(t, mock.FileExists(want))

		require.NoError(t, s.OpenFile("f.txt"))
		assert.Equal(t, want, s.OpenPath())
		require.NoError(t, s.WriteAndClose())

		after, err := s.FileMutatedAfter("f.txt", 0)
		require.NoError(t, err)
		assert.True(t, after)

		deleted, err := s.DeleteFile("f.txt")
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.False(t, mock.FileExists(want))
	})
}

func TestSession_RunCommand(t *testing.T) {
	t.Run("splits on whitespace and launches first token", func(t *testing.T) {
		s, _, launcher := newMockSession(t)

		require.NoError(t, s.RunCommand(context.Background(), "touch  a.txt\tb.txt"))

		calls := launcher.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "touch", calls[0].Name)
		assert.Equal(t, []string{"a.txt", "b.txt"}, calls[0].Args)
	})

	t.Run("prefixes the whole command line", func(t *testing.T) {
		s, _, launcher := newMockSession(t)
		s.SetDirectory("/opt/tool/")

		require.NoError(t, s.RunCommand(context.Background(), "bin/run --fast data.csv"))

		calls := launcher.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/opt/tool/bin/run", calls[0].Name)
		// Arguments are passed through verbatim, never prefixed.
		assert.Equal(t, []string{"--fast", "data.csv"}, calls[0].Args)
	})

	t.Run("empty command line fails", func(t *testing.T) {
		s, _, launcher := newMockSession(t)

		err := s.RunCommand(context.Background(), "   ")

		requireCommandError(t, err, MsgNoCommand)
		assert.Empty(t, launcher.Calls())
	})

	t.Run("launch failure is wrapped", func(t *testing.T) {
		s, _, launcher := newMockSession(t)
		launcher.Err = os.ErrPermission

		err := s.RunCommand(context.Background(), "secret --go")

		requireCommandError(t, err, `Unable to run command "secret"`)
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestSession_CreateFile(t *testing.T) {
	t.Run("writes contents verbatim", func(t *testing.T) {
		s, mock, _ := newMockSession(t)

		require.NoError(t, s.CreateFile("plain.txt", "no newline"))

		data, err := mock.ReadFile("plain.txt")
		require.NoError(t, err)
		assert.Equal(t, "no newline", string(data))
	})

	t.Run("truncates an existing file", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		mock.AddFile("plain.txt", []byte("something much longer"), 0644)

		require.NoError(t, s.CreateFile("plain.txt", "short"))

		data, _ := mock.ReadFile("plain.txt")
		assert.Equal(t, "short", string(data))
	})

	t.Run("storage failure is a CommandError", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		injected := errors.New("disk full")
		mock.FailOn("full.txt", injected)

		err := s.CreateFile("full.txt", "x")

		requireCommandError(t, err, `Unable to create file "full.txt"`)
		assert.ErrorIs(t, err, injected)
	})
}

func TestSession_CreateExecutableFile(t *testing.T) {
	t.Run("marks file executable", func(t *testing.T) {
		if !executeBitSupported {
			t.Skip("no executable bit on this platform")
		}
		s, mock, _ := newMockSession(t)
		mock.AddFile("run.sh", []byte("old"), 0600)

		require.NoError(t, s.CreateExecutableFile("run.sh", "echo hi"))

		info, err := mock.Stat("run.sh")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0711), info.Mode().Perm())
		data, _ := mock.ReadFile("run.sh")
		assert.Equal(t, "echo hi", string(data))
	})
}

func TestSession_FileAuthoring(t *testing.T) {
	t.Run("lines are trimmed and terminated in order", func(t *testing.T) {
		s, mock, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("out.txt"))
		for _, line := range []string{"  first  ", "second\t", "", "third"} {
			require.NoError(t, s.AddLine(line))
		}
		require.NoError(t, s.WriteAndClose())

		data, err := mock.ReadFile("out.txt")
		require.NoError(t, err)
		want := "first" + LineSeparator + "second" + LineSeparator + LineSeparator + "third" + LineSeparator
		assert.Equal(t, want, string(data))
	})

	t.Run("open does not touch storage", func(t *testing.T) {
		s, mock, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("lazy.txt"))
		require.NoError(t, s.AddLine("pending"))

		assert.False(t, mock.FileExists("lazy.txt"))
		assert.Equal(t, []string{"pending" + LineSeparator}, s.PendingLines())
	})

	t.Run("open trims the resolved path", func(t *testing.T) {
		s, _, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("  spaced.txt  "))

		assert.Equal(t, "spaced.txt", s.OpenPath())
	})

	t.Run("closing with no lines writes an empty file", func(t *testing.T) {
		s, mock, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("empty.txt"))
		require.NoError(t, s.WriteAndClose())

		data, err := mock.ReadFile("empty.txt")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("make executable is idempotent and applied on close", func(t *testing.T) {
		if !executeBitSupported {
			t.Skip("no executable bit on this platform")
		}
		s, mock, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("tool.sh"))
		require.NoError(t, s.MakeExecutable())
		require.NoError(t, s.MakeExecutable())
		assert.True(t, s.ExecutableRequested())
		require.NoError(t, s.WriteAndClose())

		info, err := mock.Stat("tool.sh")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	})

	t.Run("closing without executable clears execute bits", func(t *testing.T) {
		if !executeBitSupported {
			t.Skip("no executable bit on this platform")
		}
		s, mock, _ := newMockSession(t)
		mock.AddFile("was.sh", []byte("old"), 0755)

		require.NoError(t, s.OpenFile("was.sh"))
		require.NoError(t, s.WriteAndClose())

		info, _ := mock.Stat("was.sh")
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})

	t.Run("close resets state so a new file can be opened", func(t *testing.T) {
		s, _, _ := newMockSession(t)

		require.NoError(t, s.OpenFile("one.txt"))
		require.NoError(t, s.MakeExecutable())
		require.NoError(t, s.WriteAndClose())

		assert.False(t, s.IsOpen())
		assert.False(t, s.ExecutableRequested())
		require.NoError(t, s.OpenFile("two.txt"))
		assert.Empty(t, s.PendingLines())
		assert.False(t, s.ExecutableRequested())
	})
}

func TestSession_PreconditionErrors(t *testing.T) {
	t.Run("second open fails and keeps the first session", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		require.NoError(t, s.OpenFile("b.txt"))
		require.NoError(t, s.AddLine("kept"))

		err := s.OpenFile("c.txt")

		requireCommandError(t, err, MsgAlreadyOpen)
		assert.Equal(t, "b.txt", s.OpenPath())
		assert.Equal(t, []string{"kept" + LineSeparator}, s.PendingLines())

		require.NoError(t, s.WriteAndClose())
		assert.True(t, mock.FileExists("b.txt"))
		assert.False(t, mock.FileExists("c.txt"))
	})

	tests := []struct {
		name    string
		op      func(s *Session) error
		message string
	}{
		{"add line", func(s *Session) error { return s.AddLine("x") }, MsgNoFileForWriting},
		{"make executable", func(s *Session) error { return s.MakeExecutable() }, MsgNoFileExecutable},
		{"write and close", func(s *Session) error { return s.WriteAndClose() }, MsgNoFileOpened},
	}
	for _, tt := range tests {
		t.Run(tt.name+" without open file", func(t *testing.T) {
			s, mock, _ := newMockSession(t)

			err := tt.op(s)

			requireCommandError(t, err, tt.message)
			assert.False(t, s.IsOpen())
			assert.Empty(t, mock.Files())
		})
	}
}

func TestSession_WriteAndCloseFailurePreservesSession(t *testing.T) {
	s, mock, _ := newMockSession(t)
	injected := errors.New("read-only file system")
	mock.FailOn("locked.txt", injected)

	require.NoError(t, s.OpenFile("locked.txt"))
	require.NoError(t, s.AddLine("retry me"))

	err := s.WriteAndClose()

	requireCommandError(t, err, "Error writing and closing file with the name: locked.txt")
	assert.ErrorIs(t, err, injected)
	assert.True(t, s.IsOpen())
	assert.Equal(t, []string{"retry me" + LineSeparator}, s.PendingLines())

	mock.FailOn("locked.txt", nil)
	require.NoError(t, s.WriteAndClose())
	data, _ := mock.ReadFile("locked.txt")
	assert.Equal(t, "retry me"+LineSeparator, string(data))
}

func TestSession_DeleteFile(t *testing.T) {
	t.Run("missing file fails", func(t *testing.T) {
		s, _, _ := newMockSession(t)
		s.SetDirectory("/data")

		_, err := s.DeleteFile("ghost.txt")

		requireCommandError(t, err, fmt.Sprintf("File \"%s\" does not exist.", s.Resolve("ghost.txt")))
	})

	t.Run("existing file is removed", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		mock.AddFile("here.txt", []byte("x"), 0644)

		deleted, err := s.DeleteFile("here.txt")

		require.NoError(t, err)
		assert.True(t, deleted)
		assert.False(t, mock.Exists("here.txt"))
	})

	t.Run("refused removal reports false", func(t *testing.T) {
		observer := &recordingObserver{}
		mock := fs.NewMockFS()
		s := New(WithFS(mock), WithLauncher(&RecordingLauncher{}), WithObserver(observer))
		mock.AddFile("stuck.txt", []byte("x"), 0644)
		mock.FailOn("stuck.txt", os.ErrPermission)

		deleted, err := s.DeleteFile("stuck.txt")

		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Contains(t, observer.messages, "delete failed")
	})
}

func TestSession_MutationTimes(t *testing.T) {
	created := time.Unix(1_700_000_000, 500*int64(time.Millisecond))

	newClockedSession := func(t *testing.T) *Session {
		s, mock, _ := newMockSession(t)
		mock.SetClock(func() time.Time { return created })
		require.NoError(t, s.CreateExecutableFile("run.sh", "echo hi"))
		return s
	}

	t.Run("after is true for earlier instants", func(t *testing.T) {
		s := newClockedSession(t)
		for _, ts := range []int64{0, 1_600_000_000, 1_700_000_000} {
			after, err := s.FileMutatedAfter("run.sh", ts)
			require.NoError(t, err)
			assert.True(t, after, "t=%d", ts)
		}
		after, err := s.FileMutatedAfter("run.sh", 1_700_000_001)
		require.NoError(t, err)
		assert.False(t, after)
	})

	t.Run("before is true for later instants", func(t *testing.T) {
		s := newClockedSession(t)
		before, err := s.FileMutatedBefore("run.sh", 1_700_000_001)
		require.NoError(t, err)
		assert.True(t, before)

		before, err = s.FileMutatedBefore("run.sh", 1_700_000_000)
		require.NoError(t, err)
		assert.False(t, before)
	})

	t.Run("missing file counts as always before", func(t *testing.T) {
		s, _, _ := newMockSession(t)

		after, err := s.FileMutatedAfter("nothing.txt", -1)
		require.NoError(t, err)
		assert.False(t, after)

		before, err := s.FileMutatedBefore("nothing.txt", -1)
		require.NoError(t, err)
		assert.True(t, before)
	})

	t.Run("instants beyond the millisecond range saturate", func(t *testing.T) {
		s := newClockedSession(t)

		far := int64(math.MaxInt64/1000 + 1)
		after, err := s.FileMutatedAfter("run.sh", far)
		require.NoError(t, err)
		assert.False(t, after)
		before, err := s.FileMutatedBefore("run.sh", far)
		require.NoError(t, err)
		assert.True(t, before)

		past := int64(math.MinInt64/1000 - 1)
		after, err = s.FileMutatedAfter("run.sh", past)
		require.NoError(t, err)
		assert.True(t, after)
		before, err = s.FileMutatedBefore("run.sh", past)
		require.NoError(t, err)
		assert.False(t, before)

		after, err = s.FileMutatedAfter("run.sh", math.MaxInt64)
		require.NoError(t, err)
		assert.False(t, after)
	})

	t.Run("stat failure is a CommandError", func(t *testing.T) {
		s, mock, _ := newMockSession(t)
		mock.FailOn("guarded.txt", os.ErrPermission)

		_, err := s.FileMutatedAfter("guarded.txt", 0)

		requireCommandError(t, err, `Unable to read modification time of "guarded.txt"`)
	})
}

func TestSession_WaitFor(t *testing.T) {
	t.Run("sleeps for the requested seconds", func(t *testing.T) {
		var slept time.Duration
		s := New(WithFS(fs.NewMockFS()), WithSleeper(func(_ context.Context, d time.Duration) error {
			slept = d
			return nil
		}))

		s.WaitFor(context.Background(), 3)

		assert.Equal(t, 3*time.Second, slept)
	})

	t.Run("non-positive waits return immediately", func(t *testing.T) {
		called := false
		s := New(WithFS(fs.NewMockFS()), WithSleeper(func(context.Context, time.Duration) error {
			called = true
			return nil
		}))

		s.WaitFor(context.Background(), 0)
		s.WaitFor(context.Background(), -5)

		assert.False(t, called)
	})

	t.Run("interruption is swallowed", func(t *testing.T) {
		observer := &recordingObserver{}
		s := New(WithFS(fs.NewMockFS()), WithObserver(observer))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		s.WaitFor(ctx, 60)

		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Contains(t, observer.messages, "wait interrupted")
	})
}

func TestSession_AddLinePreview(t *testing.T) {
	observer := &recordingObserver{}
	mock := fs.NewMockFS()
	s := New(WithFS(mock), WithObserver(observer))
	long := strings.Repeat("abcdefghij", 3)

	require.NoError(t, s.OpenFile("long.txt"))
	require.NoError(t, s.AddLine(long))
	require.NoError(t, s.AddLine("short"))
	require.NoError(t, s.WriteAndClose())

	var previews []interface{}
	for i, msg := range observer.messages {
		if msg == "adding line to file" {
			previews = append(previews, observer.keyvals[i][1])
		}
	}
	assert.Equal(t, []interface{}{long[:20] + "...", "short"}, previews)

	data, _ := mock.ReadFile("long.txt")
	assert.Equal(t, long+LineSeparator+"short"+LineSeparator, string(data))
}

func TestSession_NopObserver(t *testing.T) {
	s := New(WithFS(fs.NewMockFS()), WithLauncher(&RecordingLauncher{}), WithObserver(NopObserver{}))

	require.NoError(t, s.OpenFile("quiet.txt"))
	require.NoError(t, s.AddLine("still written"))
	require.NoError(t, s.WriteAndClose())
}

func TestSession_RealFileSystem(t *testing.T) {
	dir := t.TempDir()

	t.Run("two lines end to end", func(t *testing.T) {
		s := New(WithLauncher(&RecordingLauncher{}))
		s.SetDirectory(dir)

		require.NoError(t, s.OpenFile("a.txt"))
		require.NoError(t, s.AddLine("hello"))
		require.NoError(t, s.AddLine("world"))
		require.NoError(t, s.WriteAndClose())

		path := filepath.Join(dir, "a.txt")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello"+LineSeparator+"world"+LineSeparator, string(data))

		if executeBitSupported {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Zero(t, info.Mode().Perm()&0o111, "file should not be executable")
		}
	})

	t.Run("executable file end to end", func(t *testing.T) {
		s := New(WithLauncher(&RecordingLauncher{}))
		s.SetDirectory(dir)
		before := time.Now().Unix() - 1

		require.NoError(t, s.CreateExecutableFile("run.sh", "echo hi"))

		path := filepath.Join(dir, "run.sh")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "echo hi", string(data))

		if executeBitSupported {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.NotZero(t, info.Mode().Perm()&0o100, "file should be executable")
		}

		after, err := s.FileMutatedAfter("run.sh", before)
		require.NoError(t, err)
		assert.True(t, after)

		later, err := s.FileMutatedBefore("run.sh", time.Now().Unix()+2)
		require.NoError(t, err)
		assert.True(t, later)
	})

	t.Run("missing parent directory fails", func(t *testing.T) {
		s := New(WithLauncher(&RecordingLauncher{}))
		s.SetDirectory(filepath.Join(dir, "missing", "deeper"))

		err := s.CreateFile("x.txt", "x")

		requireCommandError(t, err, "")
	})
}
