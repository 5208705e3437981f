package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"pixpress/internal/codec"
	"pixpress/internal/config"
	"pixpress/internal/logging"
	"pixpress/internal/processor"
	"pixpress/internal/profile"
	"pixpress/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logFile, colorMode, verbose, workers = "", "", "never", false, 1
	showTUI, reportPath = false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--color", "never"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRootConvertsDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "hero.png"), 240, 240)
	reportFile := filepath.Join(dir, "out", "run.yaml")

	out, err := execute(t, dir, "webp", "--report", reportFile)
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "hero.webp")); err != nil {
		t.Errorf("hero.webp missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hero.avif")); err == nil {
		t.Error("avif written although only webp was requested")
	}
	if !strings.Contains(out, "Summary") || !strings.Contains(out, "Processed") {
		t.Errorf("output missing summary:\n%s", out)
	}

	data, err := os.ReadFile(reportFile)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var r report.Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if r.Processed != 1 || len(r.Formats) != 1 || r.Formats[0] != "webp" {
		t.Errorf("report = %+v", r)
	}
}

func TestRootArgumentErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, "a", "b", "c"); err == nil {
		t.Error("three arguments accepted")
	}
	if _, err := execute(t, dir, "gif"); !errors.Is(err, config.ErrInvalidFormat) {
		t.Errorf("invalid format: got %v", err)
	}
	if _, err := execute(t, filepath.Join(dir, "missing")); !errors.Is(err, config.ErrInvalidTarget) {
		t.Errorf("missing target: got %v", err)
	}
}

func TestRootConfigFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "skip", "a.png"), 220, 220)
	writePNG(t, filepath.Join(dir, "keep.png"), 220, 220)
	cfg := filepath.Join(t.TempDir(), "pixpress.yaml")
	body := "input_dir: " + dir + "\nexclude: [skip]\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, "webp", "--config", cfg); err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.webp")); err != nil {
		t.Error("keep.webp missing")
	}
	if _, err := os.Stat(filepath.Join(dir, "skip", "a.webp")); err == nil {
		t.Error("excluded directory was converted")
	}
}

func TestRootDirectoryNamedLikeSubcommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "probe")
	writePNG(t, filepath.Join(dir, "inside.png"), 220, 220)

	if out, err := execute(t, dir, "webp"); err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "inside.webp")); err != nil {
		t.Errorf("inside.webp missing: %v", err)
	}
}

func TestProfilesCommand(t *testing.T) {
	out, err := execute(t, "profiles")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"photo", "graphic", "screenshot", "4:4:4", "near-lossless"} {
		if !strings.Contains(out, want) {
			t.Errorf("profiles output missing %q", want)
		}
	}
}

func TestProbeCommand(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 400, 300)

	out, err := execute(t, "probe", dir)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !strings.Contains(out, "profile: photo") || !strings.Contains(out, "400x300") {
		t.Errorf("probe output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "wide.webp")); err == nil {
		t.Error("probe wrote an output")
	}
}

// textCodec decodes "img <w>x<h>" files and writes a fixed payload.
type textCodec struct{}

func (textCodec) Decode(data []byte) (*codec.Image, error) {
	var w, h int
	if _, err := fmt.Sscanf(string(data), "img %dx%d", &w, &h); err != nil {
		return nil, err
	}
	return codec.NewImage(codec.Metadata{Width: w, Height: h}, nil), nil
}

func (textCodec) Encode(w io.Writer, _ *codec.Image, _ config.Format, _ profile.Profile) error {
	_, err := w.Write([]byte("encoded"))
	return err
}

func TestRunEngineWithProgressView(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		complete bool
	}{
		{"runs to completion", "", true},
		{"ctrl+c cancels the run", "\x03", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			const files = 300
			for i := 0; i < files; i++ {
				if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%03d.png", i)), []byte("img 400x300"), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			run, err := config.NewRun(config.Target{Path: dir, Formats: config.FormatSet{WebP: true}}, config.Defaults())
			if err != nil {
				t.Fatal(err)
			}
			log := logging.Discard()

			showTUI = true
			programOptions = []tea.ProgramOption{tea.WithInput(strings.NewReader(tt.input)), tea.WithOutput(io.Discard)}
			defer func() { showTUI, programOptions = false, nil }()

			type result struct {
				stats processor.Stats
				err   error
			}
			done := make(chan result, 1)
			go func() {
				stats, err := runEngine(context.Background(), processor.NewEngine(run, textCodec{}, log), log)
				done <- result{stats, err}
			}()

			select {
			case r := <-done:
				if r.err != nil {
					t.Fatalf("runEngine: %v", r.err)
				}
				if r.stats.Errored != 0 || r.stats.Offered() > files {
					t.Errorf("stats = %+v", r.stats)
				}
				if tt.complete && r.stats.Processed != files {
					t.Errorf("processed = %d, want %d", r.stats.Processed, files)
				}
			case <-time.After(20 * time.Second):
				t.Fatal("runEngine did not return")
			}
		})
	}
}
