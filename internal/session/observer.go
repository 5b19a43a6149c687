package session

// Observer receives progress messages from a Session. It never influences
// control flow. *log.Logger from github.com/charmbracelet/log satisfies it.
type Observer interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// NopObserver discards every message.
type NopObserver struct{}

func (NopObserver) Debug(interface{}, ...interface{}) {}
func (NopObserver) Info(interface{}, ...interface{})  {}
func (NopObserver) Warn(interface{}, ...interface{})  {}
func (NopObserver) Error(interface{}, ...interface{}) {}
