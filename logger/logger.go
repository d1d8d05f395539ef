package logger

import (
	"io"
	"log"

	"github.com/rollbar/rollbar-go"
)

// Logger writes to a standard logger and, when enabled, reports to Rollbar.
type Logger struct {
	std     *log.Logger
	enabled bool
}

// New creates a Logger. Rollbar reporting is enabled only when token is set.
func New(out io.Writer, token, env, codeVersion string) *Logger {
	l := &Logger{
		std:     log.New(out, "", log.LstdFlags),
		enabled: token != "",
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetEnabled(l.enabled)
	return l
}

// Std exposes the underlying standard logger.
func (l *Logger) Std() *log.Logger {
	return l.std
}

// Printf logs locally only.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.std.Printf(format, args...)
}

// expected args: error and/or map[string]interface{} extras
func (l *Logger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Info(append([]interface{}{msg}, args...)...)
	}
	l.print("INFO", msg, args)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Warning(append([]interface{}{msg}, args...)...)
	}
	l.print("WARN", msg, args)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	if l.enabled {
		rollbar.Error(append([]interface{}{msg}, args...)...)
	}
	l.print("ERROR", msg, args)
}

// Close flushes pending Rollbar items.
func (l *Logger) Close() {
	if l.enabled {
		rollbar.Close()
	}
}
