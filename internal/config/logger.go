package config

// Logger receives diagnostics while settings are loaded. The charmbracelet
// *log.Logger satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}
