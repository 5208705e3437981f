package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pixpress/internal/codec"
	"pixpress/internal/config"
	"pixpress/internal/display"
	"pixpress/internal/logging"
	"pixpress/internal/profile"
)

// ErrPanic wraps a panic recovered while converting one file.
var ErrPanic = errors.New("codec panicked")

// Minimum side, exclusive, for an AVIF encode.
const minAVIFSide = 50

// Engine converts files for one run configuration.
type Engine struct {
	run   config.Run
	codec codec.Codec
	log   *logging.Logger
}

func NewEngine(run config.Run, c codec.Codec, log *logging.Logger) *Engine {
	return &Engine{run: run, codec: c, log: log}
}

// Eligible reports whether path has a supported extension and does not sit
// directly inside an excluded directory.
func (e *Engine) Eligible(path string) bool {
	return e.run.Supports(path) && !e.run.Excludes(filepath.Base(filepath.Dir(path)))
}

// ConvertOne decodes path once, picks a profile and writes the requested
// formats next to the source. It never returns an error: failures come back
// as an errored Outcome.
func (e *Engine) ConvertOne(path string, formats config.FormatSet) (out Outcome) {
	out = Outcome{Path: path}
	shown := display.RelPath(path)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrPanic, r)
			e.log.Error("Failed %s: %v", shown, err)
			out.Status = StatusErrored
			out.Err = err
		}
	}()

	if !e.Eligible(path) {
		e.log.Info("Skipping %s (unsupported format or excluded)", shown)
		out.Status = StatusSkipped
		return out
	}

	if err := e.convert(path, formats, &out); err != nil {
		e.log.Error("Failed %s: %v", shown, err)
		out.Status = StatusErrored
		out.Err = err
		return out
	}

	out.Status = StatusConverted
	e.log.Success("%s", resultLine(out, formats))
	return out
}

// Probe decodes path and reports the metadata and profile ConvertOne would
// use. Nothing is written.
func (e *Engine) Probe(path string) (codec.Metadata, profile.Kind, error) {
	if !e.Eligible(path) {
		return codec.Metadata{}, "", fmt.Errorf("%w: %s", codec.ErrUnsupported, display.RelPath(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return codec.Metadata{}, "", fmt.Errorf("read: %w", err)
	}
	img, err := e.codec.Decode(data)
	if err != nil {
		return codec.Metadata{}, "", err
	}
	return img.Meta, profile.Classify(img.Meta.Classifier(), path), nil
}

func (e *Engine) convert(path string, formats config.FormatSet, out *Outcome) error {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	img, err := e.codec.Decode(data)
	if err != nil {
		return err
	}
	out.Meta = img.Meta
	out.OriginalBytes = int64(len(data))

	out.Profile = profile.Classify(img.Meta.Classifier(), path)
	p, err := profile.For(out.Profile)
	if err != nil {
		return err
	}
	e.log.Info("Converting %s [%s]", display.RelPath(path), out.Profile)
	if img.Meta.HasExif {
		e.log.Debug("%s: EXIF metadata (%s) is not carried into outputs", base, cameraLabel(img.Meta))
	}

	out.Written = make(map[config.Format]int64, 2)

	if formats.Has(config.FormatWebP) {
		n, err := e.encodeTo(path, filepath.Join(dir, base+config.FormatWebP.Ext()), img, config.FormatWebP, p)
		if err != nil {
			return err
		}
		out.Written[config.FormatWebP] = n
	}

	if formats.Has(config.FormatAVIF) {
		if img.Meta.Width > minAVIFSide && img.Meta.Height > minAVIFSide {
			n, err := e.encodeTo(path, filepath.Join(dir, base+config.FormatAVIF.Ext()), img, config.FormatAVIF, p)
			if err != nil {
				return err
			}
			out.Written[config.FormatAVIF] = n
		} else {
			out.AVIFSkipped = true
			e.log.Info("AVIF skipped for %s (image too small: %dx%d)", base, img.Meta.Width, img.Meta.Height)
		}
	}

	return nil
}

func (e *Engine) encodeTo(src, dest string, img *codec.Image, f config.Format, p profile.Profile) (int64, error) {
	if filepath.Clean(dest) == filepath.Clean(src) {
		return 0, fmt.Errorf("%s output would overwrite the source", f.Label())
	}
	n, err := writeAtomic(dest, func(w io.Writer) error {
		return e.codec.Encode(w, img, f, p)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Label(), err)
	}
	return n, nil
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place, so a failed encode never leaves a partial file.
func writeAtomic(dest string, write func(io.Writer) error) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".pixpress-*.tmp")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	if err := write(tmpFile); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return 0, err
	}
	if err := tmpFile.Close(); err != nil {
		return 0, err
	}

	if err := replaceFile(tmpFile.Name(), dest); err != nil {
		return 0, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func resultLine(o Outcome, formats config.FormatSet) string {
	base := strings.TrimSuffix(filepath.Base(o.Path), filepath.Ext(o.Path))
	parts := make([]string, 0, 2)
	for _, f := range formats.Formats() {
		size := display.FormatSize(o.Written[f])
		if f == config.FormatAVIF && o.AVIFSkipped {
			size = "skipped"
		}
		parts = append(parts, f.Label()+" "+size)
	}
	return base + ": " + strings.Join(parts, ", ")
}

func cameraLabel(m codec.Metadata) string {
	if m.Camera == "" {
		return "no camera tags"
	}
	return m.Camera
}
