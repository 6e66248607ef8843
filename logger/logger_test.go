package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewDefaultLogger("TestApp")
	logger.SetOutput(&buf)

	tests := []struct {
		level    LogLevel
		logFunc  func(string, ...any)
		message  string
		expected string
	}{
		{LogLevelDebug, logger.Debug, "Debug message", "DEBUG"},
		{LogLevelInfo, logger.Info, "Info message", "INFO"},
		{LogLevelWarn, logger.Warn, "Warn message", "WARN"},
		{LogLevelError, logger.Error, "Error message", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			buf.Reset()
			logger.SetLevel(LogLevelDebug) // Enable all levels

			tt.logFunc(tt.message)

			output := buf.String()
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got %q", tt.expected, output)
			}
			if !strings.Contains(output, tt.message) {
				t.Errorf("Expected output to contain message %q, got %q", tt.message, output)
			}
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger("TestApp")
	logger.SetOutput(&buf)

	logger.SetLevel(LogLevelWarn)

	buf.Reset()
	logger.Debug("This should not appear")
	logger.Info("This should not appear either")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below WARN level, got %q", buf.String())
	}

	logger.Warn("This should appear")
	if !strings.Contains(buf.String(), "This should appear") {
		t.Errorf("Expected WARN output, got %q", buf.String())
	}
}

func TestLogMQLRequiresDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger("")
	logger.SetOutput(&buf)

	logger.SetLevel(LogLevelInfo)
	logger.LogMQL(`db.customers.aggregate([])`, time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("Expected no MQL output at INFO level, got %q", buf.String())
	}

	logger.SetLevel(LogLevelDebug)
	logger.LogMQL(`db.customers.aggregate([])`, time.Millisecond)
	if !strings.Contains(buf.String(), "db.customers.aggregate([])") {
		t.Errorf("Expected MQL output at DEBUG level, got %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"none", LogLevelNone},
		{"bogus", LogLevelNone},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestCaptureLogger(t *testing.T) {
	capture := NewCaptureLogger(nil)

	if capture.Last() != "" {
		t.Errorf("Expected empty Last() before any capture")
	}

	capture.LogMQL(`db.customers.find({"city":"Berlin"})`, time.Millisecond)
	capture.LogMQL(`db.orders.aggregate([{"$count":"count"}])`, time.Millisecond)

	if capture.Count() != 2 {
		t.Errorf("Expected 2 captured commands, got %d", capture.Count())
	}
	if capture.Last() != `db.orders.aggregate([{"$count":"count"}])` {
		t.Errorf("Unexpected last command: %q", capture.Last())
	}

	all := capture.All()
	if len(all) != 2 || all[0] != `db.customers.find({"city":"Berlin"})` {
		t.Errorf("Unexpected captured commands: %v", all)
	}

	// Mutating the returned slice must not affect the recorder
	all[0] = "mutated"
	if capture.All()[0] == "mutated" {
		t.Errorf("All() must return a copy")
	}

	capture.Clear()
	if capture.Count() != 0 {
		t.Errorf("Expected no commands after Clear(), got %d", capture.Count())
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	capture := NewCaptureLogger(nil)
	SetGlobalLogger(capture)

	LogMQL(`db.products.find({})`, 0)
	if capture.Last() != `db.products.find({})` {
		t.Errorf("Global LogMQL did not reach the capture logger: %q", capture.Last())
	}
}
