// Package processor runs the conversion over a file or a directory tree and
// keeps the run statistics.
package processor

import (
	"context"
	"strings"
	"sync"

	"pixpress/internal/config"
	"pixpress/internal/discover"
)

// Run converts the configured target and returns the aggregate statistics.
// The only error is an invalid target, reported before any file is touched.
// When updates is non-nil it receives one delta per file; Run does not close it.
func (e *Engine) Run(ctx context.Context, updates chan<- ProgressUpdate) (Stats, error) {
	stats := Stats{}

	kind, err := config.CheckTarget(e.run.TargetPath)
	if err != nil {
		return stats, err
	}

	e.log.Info("Starting conversion")
	e.log.Info("Path: %s", e.run.TargetPath)
	e.log.Info("Format: %s", e.run.Formats)
	e.log.Debug("Extensions: %s", strings.Join(e.run.Extensions(), ", "))
	e.log.Debug("Excluded directories: %s", strings.Join(e.run.ExcludedNames(), ", "))
	if kind == config.TargetFile {
		e.log.Info("Mode: single image")
	} else {
		e.log.Info("Mode: directory and subdirectories")
	}

	files := e.collect(kind)
	if kind == config.TargetDir {
		if len(files) == 0 {
			e.log.Info("No matching images found")
			return stats, nil
		}
		e.log.Info("Found %d files", len(files))
	}

	if updates != nil {
		updates <- ProgressUpdate{TotalDelta: len(files)}
	}

	if e.run.Workers <= 1 {
		e.runSequential(ctx, files, &stats, updates)
	} else {
		e.runPool(ctx, files, &stats, updates)
	}
	return stats, nil
}

// Files lists what Run would offer to ConvertOne, without converting.
func (e *Engine) Files() ([]string, error) {
	kind, err := config.CheckTarget(e.run.TargetPath)
	if err != nil {
		return nil, err
	}
	return e.collect(kind), nil
}

func (e *Engine) collect(kind config.TargetKind) []string {
	if kind == config.TargetFile {
		return []string{e.run.TargetPath}
	}
	return discover.Walk(e.run.TargetPath, e.run, e.log)
}

func (e *Engine) runSequential(ctx context.Context, files []string, stats *Stats, updates chan<- ProgressUpdate) {
	for _, path := range files {
		if ctx.Err() != nil {
			e.log.Warn("Interrupted, %d files not started", len(files)-stats.Offered())
			return
		}
		u := stats.Apply(e.ConvertOne(path, e.run.Formats))
		if updates != nil {
			updates <- u
		}
	}
}

// runPool fans files out to a bounded set of workers. A single collector
// applies outcomes, so Stats has one writer.
func (e *Engine) runPool(ctx context.Context, files []string, stats *Stats, updates chan<- ProgressUpdate) {
	jobs := make(chan string)
	results := make(chan Outcome)

	workers := e.run.Workers
	if workers > len(files) {
		workers = len(files)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- e.ConvertOne(path, e.run.Formats)
			}
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			u := stats.Apply(res)
			if updates != nil {
				updates <- u
			}
		}
	}()

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if ctx.Err() != nil && stats.Offered() < len(files) {
		e.log.Warn("Interrupted, %d files not started", len(files)-stats.Offered())
	}
}
