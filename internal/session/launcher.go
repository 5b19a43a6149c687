package session

import (
	"context"
	"os/exec"
	"sync"
)

// Launcher starts external processes. Launch returns as soon as the
// process has started; its completion is not coordinated with the caller.
type Launcher interface {
	Launch(ctx context.Context, name string, args []string) error
}

// ExecLauncher launches processes with os/exec. Each child is reaped in
// its own goroutine so it never lingers as a zombie.
type ExecLauncher struct {
	Observer Observer
}

// NewExecLauncher returns an ExecLauncher reporting exits to observer.
func NewExecLauncher(observer Observer) *ExecLauncher {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ExecLauncher{Observer: observer}
}

// Launch starts name with args. The process is deliberately not bound to
// ctx: it must outlive the row that started it.
func (l *ExecLauncher) Launch(ctx context.Context, name string, args []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	observer := l.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		if err != nil {
			observer.Debug("command exited", "command", name, "pid", pid, "err", err)
			return
		}
		observer.Debug("command exited", "command", name, "pid", pid)
	}()
	return nil
}

// Invocation is one recorded call to RecordingLauncher.Launch.
type Invocation struct {
	Name string
	Args []string
}

// RecordingLauncher records launches instead of starting processes. It is
// used by tests and dry runs. When Err is set every launch fails with it.
type RecordingLauncher struct {
	Err error

	mu    sync.Mutex
	calls []Invocation
}

func (l *RecordingLauncher) Launch(_ context.Context, name string, args []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.calls = append(l.calls, Invocation{Name: name, Args: append([]string(nil), args...)})
	return nil
}

// Calls returns a copy of the recorded invocations.
func (l *RecordingLauncher) Calls() []Invocation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Invocation(nil), l.calls...)
}
