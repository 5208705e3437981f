package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pixpress/internal/display"
	"pixpress/internal/processor"
)

// Model renders live run progress from a stream of processor updates.
type Model struct {
	updates     <-chan processor.ProgressUpdate
	bar         progress.Model
	started     time.Time
	total       int
	processed   int
	skipped     int
	errors      int
	original    int64
	encoded     int64
	last        string
	quitting    bool
	interrupted bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

func NewModel(updates <-chan processor.ProgressUpdate) Model {
	return Model{
		updates: updates,
		bar:     progress.New(progress.WithGradient(string(ColorAccentAlt), string(ColorAccent)), progress.WithWidth(40)),
		started: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.skipped += msg.SkippedDelta
		m.errors += msg.ErrorDelta
		m.original += msg.OriginalDelta
		m.encoded += msg.EncodedDelta
		if msg.Path != "" {
			m.last = filepath.Base(msg.Path) + " (" + msg.Status.String() + ")"
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		width := msg.Width - 10
		if width > 60 {
			width = 60
		}
		if width < 20 {
			width = 20
		}
		m.bar.Width = width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

// Interrupted reports whether the user quit the view with Ctrl+C.
func (m Model) Interrupted() bool {
	return m.interrupted
}

// Ratio is the share of discovered files that have an outcome.
func (m Model) Ratio() float64 {
	if m.total == 0 {
		return 0
	}
	done := float64(m.processed+m.skipped+m.errors) / float64(m.total)
	if done > 1 {
		return 1
	}
	return done
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines := []string{
		titleStyle.Render("pixpress"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.processed+m.skipped+m.errors, m.total)) +
			dimStyle.Render(fmt.Sprintf("  converted:%d skipped:%d errors:%d", m.processed, m.skipped, m.errors)),
		labelStyle.Render(fmt.Sprintf("Originals: %s  Encoded: %s", display.FormatSize(m.original), display.FormatSize(m.encoded))),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		m.bar.ViewAs(m.Ratio()),
	}
	if m.last != "" {
		lines = append(lines, dimStyle.Render("Last: "+m.last))
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
