package caddyfile

// Logger receives parser diagnostics. *log.Logger from charmbracelet/log
// satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}
