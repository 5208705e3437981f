package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"pixpress/internal/config"
	"pixpress/internal/processor"
)

func TestWriteReport(t *testing.T) {
	run, err := config.NewRun(config.Target{Path: "/srv/images", Formats: config.BothFormats}, config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	stats := processor.Stats{
		Processed:     3,
		Errored:       1,
		OriginalBytes: 1000,
		EncodedBytes:  map[config.Format]int64{config.FormatWebP: 250},
		Failures:      []processor.Failure{{Path: "/srv/images/bad.png", Error: "decode png: invalid format"}},
	}
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	r := New(run, stats, started, started.Add(3*time.Second))
	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", r.RunID, err)
	}
	if len(r.Formats) != 2 || len(r.Outputs) != 1 || r.Outputs[0].Savings != 75.0 {
		t.Errorf("report = %+v", r)
	}

	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	if err := Write(path, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := readReport(t, path)
	if got.RunID != r.RunID || got.Errored != 1 || got.Failures[0].Path != "/srv/images/bad.png" {
		t.Errorf("read back = %+v", got)
	}
	if !got.FinishedAt.Equal(started.Add(3 * time.Second)) {
		t.Errorf("FinishedAt = %v", got.FinishedAt)
	}
}

func readReport(t *testing.T, path string) Report {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	return r
}
