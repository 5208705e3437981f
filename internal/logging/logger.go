// Package logging provides the leveled console logger used by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects when level tags are colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Options configures a Logger. Zero values log uncolored to stdout/stderr.
type Options struct {
	Out     io.Writer
	Err     io.Writer
	Color   ColorMode
	LogFile string
	Verbose bool
}

type level struct {
	name  string
	color lipgloss.Color
}

var (
	levelInfo    = level{"INFO", lipgloss.Color("#81A1C1")}
	levelSuccess = level{"SUCCESS", lipgloss.Color("#A3BE8C")}
	levelWarn    = level{"WARN", lipgloss.Color("#EBCB8B")}
	levelError   = level{"ERROR", lipgloss.Color("#BF616A")}
	levelDebug   = level{"DEBUG", lipgloss.Color("#88C0D0")}
)

// Logger writes timestamped, leveled lines, optionally colored, with an
// optional plain-text file sink. Safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	renderer *lipgloss.Renderer
	color    bool
	verbose  bool
	file     *os.File
	now      func() time.Time
}

// New builds a Logger. Call Close when LogFile was set.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		out:     opts.Out,
		errOut:  opts.Err,
		verbose: opts.Verbose,
		now:     time.Now,
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.errOut == nil {
		l.errOut = os.Stderr
	}

	l.renderer = lipgloss.NewRenderer(l.out)
	switch opts.Color {
	case ColorAlways:
		l.color = true
		l.renderer.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		l.color = false
	default:
		l.color = isTerminal(l.out) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard, errOut: io.Discard, renderer: lipgloss.NewRenderer(io.Discard), now: time.Now}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Quiet redirects console output to w (usually io.Discard while a TUI owns
// the terminal) and returns a func that restores the previous writers. The
// file sink is unaffected.
func (l *Logger) Quiet(w io.Writer) (restore func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out, errOut := l.out, l.errOut
	l.out = w
	l.errOut = w
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.out = out
		l.errOut = errOut
	}
}

func (l *Logger) line(lv level, text string) {
	ts := l.now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + lv.name + "] " + text + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if lv == levelError {
		out = l.errOut
	}
	if l.color {
		tag := l.renderer.NewStyle().Bold(true).Foreground(lv.color).Render("[" + lv.name + "]")
		_, _ = io.WriteString(out, ts+" "+tag+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.line(levelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Success(format string, args ...any) {
	l.line(levelSuccess, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.line(levelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level to the error writer.
func (l *Logger) Error(format string, args ...any) {
	l.line(levelError, fmt.Sprintf(format, args...))
}

// Debug logs only when the logger was built with Verbose.
func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.line(levelDebug, fmt.Sprintf(format, args...))
}
