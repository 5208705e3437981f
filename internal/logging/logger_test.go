package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, verbose bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	l, err := New(Options{Out: &out, Err: &errOut, Color: ColorNever, Verbose: verbose})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l, &out, &errOut
}

func TestLevelsAndRouting(t *testing.T) {
	l, out, errOut := newTestLogger(t, false)

	l.Info("hello %s", "world")
	l.Success("done")
	l.Warn("careful")
	l.Error("broken: %d", 42)
	l.Debug("hidden")

	got := out.String()
	for _, want := range []string{
		"2024-01-02 03:04:05 [INFO] hello world\n",
		"[SUCCESS] done\n",
		"[WARN] careful\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "ERROR") || strings.Contains(got, "hidden") {
		t.Errorf("unexpected line in stdout: %q", got)
	}
	if !strings.Contains(errOut.String(), "[ERROR] broken: 42") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestDebugWhenVerbose(t *testing.T) {
	l, out, _ := newTestLogger(t, true)
	l.Debug("visible %d", 1)
	if !strings.Contains(out.String(), "[DEBUG] visible 1") {
		t.Errorf("got %q", out.String())
	}
}

func TestFileSinkIsPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	l, err := New(Options{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}, Color: ColorAlways, LogFile: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Warn("to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[WARN] to file") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("log file contains ANSI escapes: %q", data)
	}
}

func TestQuiet(t *testing.T) {
	l, out, _ := newTestLogger(t, false)
	var sink bytes.Buffer
	restore := l.Quiet(&sink)
	l.Info("muted")
	if out.Len() != 0 {
		t.Errorf("expected no console output, got %q", out.String())
	}
	if !strings.Contains(sink.String(), "muted") {
		t.Errorf("sink = %q", sink.String())
	}

	restore()
	l.Info("back")
	if !strings.Contains(out.String(), "back") || strings.Contains(sink.String(), "back") {
		t.Errorf("after restore: out = %q, sink = %q", out.String(), sink.String())
	}
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{"": ColorAuto, "AUTO": ColorAuto, "always": ColorAlways, " never ": ColorNever} {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Errorf("ParseColorMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseColorMode("rainbow"); err == nil {
		t.Error("expected error for invalid mode")
	}
}
