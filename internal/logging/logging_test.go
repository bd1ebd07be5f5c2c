package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func keepDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestOpen_JSON(t *testing.T) {
	keepDefault(t)
	logPath := PathIn(t.TempDir())

	logger, closer, err := Open(Options{Path: logPath})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	logger.Info("hello", slog.String("component", "test"))
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("Expected JSON log line, got: %s", string(data))
	}
	if slog.Default() != logger {
		t.Error("Open should install the logger as the slog default")
	}
}

func TestOpen_TextFormatAndLevel(t *testing.T) {
	keepDefault(t)
	logPath := filepath.Join(t.TempDir(), "echo.log")

	logger, closer, err := Open(Options{Path: logPath, Level: "warn", Format: "TEXT"})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown")

	data, _ := os.ReadFile(logPath)
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("Expected text log line, got: %s", out)
	}
}

func TestOpen_NoPath(t *testing.T) {
	keepDefault(t)

	logger, closer, err := Open(Options{})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	logger.Info("dropped")
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestOpen_UnwritableDir(t *testing.T) {
	keepDefault(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	logger, closer, err := Open(Options{Path: filepath.Join(blocker, "logs", FileName)})
	if err == nil {
		t.Fatal("expected an error when the log directory cannot be created")
	}
	logger.Info("still usable")
	_ = closer.Close()
}

func TestPathIn(t *testing.T) {
	want := filepath.Join("/var/lib/echochat", "logs", "echochat.log")
	if got := PathIn("/var/lib/echochat"); got != want {
		t.Errorf("PathIn() = %s, want %s", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
