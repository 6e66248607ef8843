package logger

import (
	"io"
	"sync"
	"time"
)

// CaptureLogger records every MQL command logged through it, in emission
// order. Conformance tests attach one to a provider and assert the captured
// commands against baselines.
type CaptureLogger struct {
	mu       sync.Mutex
	level    LogLevel
	commands []string
	inner    Logger
}

// NewCaptureLogger creates a capture logger. The inner logger may be nil,
// in which case non-MQL messages are discarded.
func NewCaptureLogger(inner Logger) *CaptureLogger {
	if inner == nil {
		inner = NewNullLogger()
	}
	return &CaptureLogger{
		level: LogLevelDebug,
		inner: inner,
	}
}

// LogMQL records the command and forwards it to the inner logger.
func (c *CaptureLogger) LogMQL(mql string, duration time.Duration) {
	c.mu.Lock()
	c.commands = append(c.commands, mql)
	c.mu.Unlock()
	c.inner.LogMQL(mql, duration)
}

// All returns every captured command in emission order.
func (c *CaptureLogger) All() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.commands))
	copy(out, c.commands)
	return out
}

// Last returns the most recently captured command, or "" if none.
func (c *CaptureLogger) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.commands) == 0 {
		return ""
	}
	return c.commands[len(c.commands)-1]
}

// Count returns the number of captured commands.
func (c *CaptureLogger) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.commands)
}

// Clear discards all captured commands.
func (c *CaptureLogger) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = nil
}

func (c *CaptureLogger) Debug(format string, args ...any) { c.inner.Debug(format, args...) }
func (c *CaptureLogger) Info(format string, args ...any)  { c.inner.Info(format, args...) }
func (c *CaptureLogger) Warn(format string, args ...any)  { c.inner.Warn(format, args...) }
func (c *CaptureLogger) Error(format string, args ...any) { c.inner.Error(format, args...) }

func (c *CaptureLogger) SetLevel(level LogLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

func (c *CaptureLogger) GetLevel() LogLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

func (c *CaptureLogger) SetOutput(w io.Writer) {
	c.inner.SetOutput(w)
}
