package processor

import (
	"pixpress/internal/codec"
	"pixpress/internal/config"
	"pixpress/internal/profile"
)

// Status is the result of one file.
type Status int

const (
	StatusConverted Status = iota + 1
	StatusSkipped
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "converted"
	case StatusSkipped:
		return "skipped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome is the per-file result. It is applied to Stats exactly once.
type Outcome struct {
	Path          string
	Status        Status
	Profile       profile.Kind
	Meta          codec.Metadata
	OriginalBytes int64
	Written       map[config.Format]int64
	AVIFSkipped   bool
	Err           error
}

// Failure records an errored file for the run report.
type Failure struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

// Stats accumulates outcomes over a run. Only the goroutine running the
// engine's collector calls Apply.
type Stats struct {
	Processed     int
	Skipped       int
	Errored       int
	OriginalBytes int64
	EncodedBytes  map[config.Format]int64
	Failures      []Failure
}

// Offered is the number of outcomes applied so far.
func (s *Stats) Offered() int {
	return s.Processed + s.Skipped + s.Errored
}

// Encoded returns the byte total written for f.
func (s *Stats) Encoded(f config.Format) int64 {
	return s.EncodedBytes[f]
}

// Apply folds o into the totals and returns the matching progress delta.
// Byte counts are added even for errored files: an image that decoded and
// wrote its WebP before the AVIF encode failed still has that output on disk.
func (s *Stats) Apply(o Outcome) ProgressUpdate {
	u := ProgressUpdate{Path: o.Path, Status: o.Status}

	switch o.Status {
	case StatusConverted:
		s.Processed++
		u.ProcessedDelta = 1
	case StatusSkipped:
		s.Skipped++
		u.SkippedDelta = 1
	default:
		s.Errored++
		u.ErrorDelta = 1
		msg := "unknown error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		s.Failures = append(s.Failures, Failure{Path: o.Path, Error: msg})
	}

	s.OriginalBytes += o.OriginalBytes
	u.OriginalDelta = o.OriginalBytes
	for f, n := range o.Written {
		if s.EncodedBytes == nil {
			s.EncodedBytes = make(map[config.Format]int64)
		}
		s.EncodedBytes[f] += n
		u.EncodedDelta += n
	}
	return u
}

// ProgressUpdate is sent to the progress view once per applied outcome, plus
// once with TotalDelta when discovery finishes.
type ProgressUpdate struct {
	Path           string
	Status         Status
	TotalDelta     int
	ProcessedDelta int
	SkippedDelta   int
	ErrorDelta     int
	OriginalDelta  int64
	EncodedDelta   int64
}
