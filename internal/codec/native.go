package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/tiff"

	"pixpress/internal/config"
	"pixpress/internal/profile"
	"pixpress/pkg/imgutil"
)

// Native decodes with the Go image packages and encodes with the
// gen2brain WebP and AVIF encoders.
type Native struct{}

func New() *Native {
	return &Native{}
}

// Decode sniffs, decodes and probes data.
func (n *Native) Decode(data []byte) (*Image, error) {
	kind, err := imgutil.SniffBytes(data)
	if err != nil {
		return nil, fmt.Errorf("sniff: %w", err)
	}
	if !kind.Decodable() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	bounds := img.Bounds()
	meta := Metadata{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Kind:   kind,
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("decode %s: empty image", kind)
	}

	switch kind {
	case imgutil.KindPNG:
		meta.HasAlpha, err = pngHasAlpha(data)
		if err != nil {
			return nil, fmt.Errorf("png header: %w", err)
		}
	case imgutil.KindTIFF:
		meta.HasAlpha, err = tiffHasAlpha(data)
		if err != nil {
			return nil, fmt.Errorf("tiff header: %w", err)
		}
	}

	if kind == imgutil.KindJPEG || kind == imgutil.KindTIFF {
		if exifInfo, err := analyzeExif(data); err == nil {
			meta.HasExif = exifInfo.Present
			meta.Camera = exifInfo.Camera
		}
	}

	return NewImage(meta, img), nil
}

// Encode writes img to w in format using the matching half of p.
func (n *Native) Encode(w io.Writer, img *Image, format config.Format, p profile.Profile) error {
	if img == nil || img.pixels == nil {
		return fmt.Errorf("encode %s: no decoded pixels", format)
	}

	switch format {
	case config.FormatWebP:
		if err := webp.Encode(w, img.pixels, webpOptions(p.WebP)); err != nil {
			return fmt.Errorf("encode webp: %w", err)
		}
	case config.FormatAVIF:
		if err := avif.Encode(w, img.pixels, avifOptions(p.AVIF)); err != nil {
			return fmt.Errorf("encode avif: %w", err)
		}
	default:
		return fmt.Errorf("encode: unknown format %q", format)
	}
	return nil
}

// webpOptions maps profile parameters onto the encoder. The encoder exposes
// quality, lossless and method; near-lossless, smart subsampling and the
// alpha settings keep the library defaults.
func webpOptions(p profile.WebP) webp.Options {
	return webp.Options{
		Quality:  clamp(p.Quality, 0, 100),
		Lossless: p.Lossless,
		Method:   clamp(p.Effort, 0, 6),
	}
}

// avifOptions maps effort (0 fast .. 9 slow) onto encoder speed (0 slow .. 10 fast).
func avifOptions(p profile.AVIF) avif.Options {
	opts := avif.Options{
		Quality:           clamp(p.Quality, 0, 100),
		QualityAlpha:      clamp(p.AlphaQuality, 0, 100),
		Speed:             clamp(9-p.Effort, 0, 10),
		ChromaSubsampling: chromaRatio(p.ChromaSubsampling),
	}
	if p.Lossless {
		opts.Quality = 100
		opts.QualityAlpha = 100
		opts.ChromaSubsampling = image.YCbCrSubsampleRatio444
	}
	return opts
}

func chromaRatio(mode string) image.YCbCrSubsampleRatio {
	switch mode {
	case profile.Chroma444:
		return image.YCbCrSubsampleRatio444
	case "4:2:2":
		return image.YCbCrSubsampleRatio422
	default:
		return image.YCbCrSubsampleRatio420
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
