package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestInitializeWithConfig_TUIMode(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("TSKCTL_DATA_DIR", dataDir)
	t.Cleanup(func() { Close() })

	cfg := Config{
		Level:   "DEBUG",
		Format:  "text",
		TUIMode: true,
	}

	if err := InitializeWithConfig(cfg); err != nil {
		t.Fatalf("InitializeWithConfig failed: %v", err)
	}

	if logLevel != slog.LevelDebug {
		t.Errorf("Expected log level DEBUG, got %v", logLevel)
	}

	expectedLogFile := filepath.Join(dataDir, "logs", "tskctl.log")
	if logFile != expectedLogFile {
		t.Errorf("Expected log file %s, got %s", expectedLogFile, logFile)
	}

	if !tuiMode {
		t.Error("TUI mode should be true")
	}

	if _, err := os.Stat(expectedLogFile); os.IsNotExist(err) {
		t.Errorf("Log file should be created: %s", expectedLogFile)
	}
}

func TestInitializeWithConfig_NonTUIMode(t *testing.T) {
	cfg := Config{
		Level:  "INFO",
		Format: "json",
	}

	if err := InitializeWithConfig(cfg); err != nil {
		t.Fatalf("InitializeWithConfig failed: %v", err)
	}

	if logLevel != slog.LevelInfo {
		t.Errorf("Expected log level INFO, got %v", logLevel)
	}
	if logFile != "" {
		t.Errorf("Log file should not be set in non-TUI mode, got %s", logFile)
	}
	if tuiMode {
		t.Error("TUI mode should be false")
	}
	if logFormat != "json" {
		t.Errorf("Expected log format json, got %s", logFormat)
	}
	if slog.Default() != GetLogger() {
		t.Error("Process logger should be the slog default")
	}
}

func TestLogLevelParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := InitializeWithConfig(Config{Level: tt.input}); err != nil {
				t.Fatalf("InitializeWithConfig failed: %v", err)
			}
			if GetLevel() != tt.expected {
				t.Errorf("For input %q, expected level %v, got %v", tt.input, tt.expected, GetLevel())
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TSKCTL_DEBUG", "1")

	cfg := ConfigFromEnv()
	if cfg.Level != "DEBUG" {
		t.Errorf("Expected DEBUG from TSKCTL_DEBUG, got %s", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Expected json format, got %s", cfg.Format)
	}

	t.Setenv("TSKCTL_DEBUG", "")
	if got := ConfigFromEnv().Level; got != "WARN" {
		t.Errorf("Expected WARN by default, got %s", got)
	}

	t.Setenv("LOG_LEVEL", "error")
	if got := ConfigFromEnv().Level; got != "error" {
		t.Errorf("Expected LOG_LEVEL to win, got %s", got)
	}
}

func TestLoggingFunctions(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")
	t.Cleanup(func() { Close() })

	if err := InitializeWithConfig(Config{Level: "DEBUG", File: logFile}); err != nil {
		t.Fatalf("InitializeWithConfig failed: %v", err)
	}

	Debug("test debug", "key", "value")
	Info("test info", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	for _, want := range []string{"test debug", "test info", "test warn", "test error"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("Log file should contain %q", want)
		}
	}
}

func TestInitializeWithConfig_BadFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := InitializeWithConfig(Config{File: filepath.Join(blocker, "sub", "x.log")})
	if err == nil {
		t.Fatal("Expected error for a log path below a regular file")
	}
}

func TestClose(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "close-test.log")

	if err := InitializeWithConfig(Config{Level: "INFO", File: logFile}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	Info("test log before close")

	if err := Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
	if GetLogFile() != "" {
		t.Errorf("Log file should be cleared after Close(), got %s", GetLogFile())
	}
	if err := Close(); err != nil {
		t.Errorf("Second Close() returned error: %v", err)
	}
}

// TestConcurrentAccess verifies thread-safety of concurrent logging and getters
func TestConcurrentAccess(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "concurrent.log")
	t.Cleanup(func() { Close() })

	if err := InitializeWithConfig(Config{Level: "WARN", Format: "json", File: logFile}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			Warn("concurrent warn", "goroutine", id)
			if GetLevel() != slog.LevelWarn {
				errs <- fmt.Errorf("goroutine %d: expected WARN, got %v", id, GetLevel())
			}
			if GetFormat() != "json" {
				errs <- fmt.Errorf("goroutine %d: expected json, got %s", id, GetFormat())
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if got := strings.Count(string(content), "concurrent warn"); got != numGoroutines {
		t.Errorf("Expected %d entries, got %d", numGoroutines, got)
	}
}
