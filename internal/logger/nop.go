package logger

// nopLogger discards everything. Tests and constructors that tolerate a
// missing logger use it to keep nil checks out of the hot paths.
type nopLogger struct{}

// NewNop returns a logger that discards all output.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(msg string, fields ...Field) {}
func (nopLogger) Info(msg string, fields ...Field)  {}
func (nopLogger) Warn(msg string, fields ...Field)  {}
func (nopLogger) Error(msg string, fields ...Field) {}

// Fatal discards the message and, unlike the real logger, does not exit.
func (nopLogger) Fatal(msg string, fields ...Field) {}

func (l nopLogger) With(fields ...Field) Logger { return l }

func (nopLogger) Sync() error { return nil }
