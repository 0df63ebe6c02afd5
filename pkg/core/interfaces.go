package core

// Logger receives progress messages from the renderer and its hosts
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards every message
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}
