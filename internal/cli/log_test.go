package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("tick") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("tick") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("tick") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("tick") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestDiscardLogger(t *testing.T) {
	l := discardLogger()
	l.Error("dropped")
	if l.GetLevel() != log.FatalLevel {
		t.Errorf("level = %v, want fatal", l.GetLevel())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Simulated 4 items")

	out := buf.String()
	if !strings.Contains(out, "Simulated 4 items (") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}
	//nolint:staticcheck // nil context is accepted
	if got := loggerFromContext(withLogger(nil, custom)); got != custom {
		t.Error("withLogger(nil, l) lost the logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}
}
