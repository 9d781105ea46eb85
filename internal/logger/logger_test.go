package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestResolveLogFilePathFallsBackToWorkdir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	realTmp, _ := filepath.EvalSymlinks(tmpDir)
	realDir, _ := filepath.EvalSymlinks(filepath.Dir(got))
	if realDir != filepath.Join(realTmp, defaultLogDirName) {
		t.Fatalf("log dir = %s, want under %s", realDir, realTmp)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("log filename = %s", filepath.Base(got))
	}
}

func TestReleaseModeWritesJSONLines(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Info("checkout_created", zap.String("tour_id", "42"))
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"event":"checkout_created"`) || !strings.Contains(text, `"tour_id":"42"`) {
		t.Fatalf("unexpected log line: %s", text)
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug_line")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode must not create a log file")
	}
}

func TestResolveLevelHonoursExplicitLevel(t *testing.T) {
	if lvl := resolveLevel("warn", true); lvl.Level() != zap.WarnLevel {
		t.Fatalf("level = %s, want warn", lvl.Level())
	}
	if lvl := resolveLevel("", false); lvl.Level() != zap.InfoLevel {
		t.Fatalf("level = %s, want info", lvl.Level())
	}
	if lvl := resolveLevel("bogus", true); lvl.Level() != zap.DebugLevel {
		t.Fatalf("level = %s, want debug", lvl.Level())
	}
}
