package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
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
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("scanned") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("layout recomputed") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("layout recomputed") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("probe failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("serving")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("log line %q does not start with an HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestStopwatchDone(t *testing.T) {
	var buf bytes.Buffer
	startStopwatch(newLogger(&buf, log.InfoLevel)).done("scan complete", "images", 12)

	line := buf.String()
	for _, want := range []string{"scan complete", "images=12", "elapsed="} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestOpenLogFile(t *testing.T) {
	logger, closeLog, err := openLogFile("", log.DebugLevel)
	if err != nil || logger == nil {
		t.Fatalf("openLogFile(\"\") = %v, %v", logger, err)
	}
	if err := closeLog(); err != nil {
		t.Errorf("close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "view.log")
	logger, closeLog, err = openLogFile(path, log.DebugLevel)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("layout recomputed", "bins", 4)
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "layout recomputed bins=4") {
		t.Errorf("log file = %q", data)
	}

	if _, _, err := openLogFile(filepath.Join(t.TempDir(), "missing", "view.log"), log.InfoLevel); err == nil {
		t.Error("opening a log file in a missing directory succeeded")
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext returned nil without a logger in the context")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Fatal("loggerFromContext did not return the attached logger")
	}
}
