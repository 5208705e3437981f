// Package report writes a machine-readable record of a finished run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"pixpress/internal/config"
	"pixpress/internal/processor"
)

// Report is the YAML document written after a run.
type Report struct {
	RunID      string              `yaml:"run_id"`
	StartedAt  time.Time           `yaml:"started_at"`
	FinishedAt time.Time           `yaml:"finished_at"`
	Target     string              `yaml:"target"`
	Formats    []string            `yaml:"formats"`
	Processed  int                 `yaml:"processed"`
	Skipped    int                 `yaml:"skipped"`
	Errored    int                 `yaml:"errored"`
	Original   int64               `yaml:"original_bytes"`
	Outputs    []Output            `yaml:"outputs,omitempty"`
	Failures   []processor.Failure `yaml:"failures,omitempty"`
}

// Output is the byte total and savings for one format.
type Output struct {
	Format  string  `yaml:"format"`
	Bytes   int64   `yaml:"bytes"`
	Savings float64 `yaml:"savings_percent"`
}

// New assembles a report for a finished run.
func New(run config.Run, stats processor.Stats, started, finished time.Time) Report {
	r := Report{
		RunID:      uuid.New().String(),
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Target:     run.TargetPath,
		Processed:  stats.Processed,
		Skipped:    stats.Skipped,
		Errored:    stats.Errored,
		Original:   stats.OriginalBytes,
		Failures:   stats.Failures,
	}
	for _, f := range run.Formats.Formats() {
		r.Formats = append(r.Formats, string(f))
		if n := stats.Encoded(f); n > 0 {
			r.Outputs = append(r.Outputs, Output{
				Format:  string(f),
				Bytes:   n,
				Savings: processor.Savings(stats.OriginalBytes, n),
			})
		}
	}
	return r
}

// Write stores r as YAML at path, creating parent directories.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
