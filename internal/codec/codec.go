// Package codec decodes source images and encodes them to WebP and AVIF.
package codec

import (
	"errors"
	"image"
	"io"

	"pixpress/internal/config"
	"pixpress/internal/profile"
	"pixpress/pkg/imgutil"
)

// ErrUnsupported is returned for content the decoder does not read.
var ErrUnsupported = errors.New("unsupported image content")

// Metadata describes a decoded image.
type Metadata struct {
	Width    int
	Height   int
	HasAlpha bool

	Kind    imgutil.Kind
	HasExif bool
	Camera  string
}

// Classifier returns the subset of the metadata the profile heuristic uses.
func (m Metadata) Classifier() profile.Metadata {
	return profile.Metadata{Width: m.Width, Height: m.Height, HasAlpha: m.HasAlpha}
}

// Image is a decoded source. One Image feeds every encode of a file.
type Image struct {
	Meta   Metadata
	pixels image.Image
}

// NewImage wraps already-decoded pixels.
func NewImage(meta Metadata, pixels image.Image) *Image {
	return &Image{Meta: meta, pixels: pixels}
}

// Pixels returns the decoded raster, nil for images built without one.
func (i *Image) Pixels() image.Image {
	return i.pixels
}

// Codec is the decode/encode capability the converter depends on.
type Codec interface {
	Decode(data []byte) (*Image, error)
	Encode(w io.Writer, img *Image, format config.Format, p profile.Profile) error
}
