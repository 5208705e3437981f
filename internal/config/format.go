package config

import (
	"errors"
	"fmt"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
)

// Ext returns the output file extension, with leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Label is the display name used in banners and summaries.
func (f Format) Label() string {
	switch f {
	case FormatWebP:
		return "WebP"
	case FormatAVIF:
		return "AVIF"
	default:
		return strings.ToUpper(string(f))
	}
}

var ErrInvalidFormat = errors.New("invalid format")

// FormatSet is the requested subset of {webp, avif}.
type FormatSet struct {
	WebP bool
	AVIF bool
}

// BothFormats requests WebP and AVIF output.
var BothFormats = FormatSet{WebP: true, AVIF: true}

// ParseFormatSet parses a format keyword: webp, avif or both (case-insensitive).
func ParseFormatSet(s string) (FormatSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatSet{WebP: true}, nil
	case "avif":
		return FormatSet{AVIF: true}, nil
	case "both":
		return BothFormats, nil
	default:
		return FormatSet{}, fmt.Errorf("%w %q: use webp, avif or both", ErrInvalidFormat, s)
	}
}

// Has reports whether f was requested.
func (s FormatSet) Has(f Format) bool {
	switch f {
	case FormatWebP:
		return s.WebP
	case FormatAVIF:
		return s.AVIF
	default:
		return false
	}
}

// Formats lists the requested formats, WebP first.
func (s FormatSet) Formats() []Format {
	var out []Format
	if s.WebP {
		out = append(out, FormatWebP)
	}
	if s.AVIF {
		out = append(out, FormatAVIF)
	}
	return out
}

func (s FormatSet) Empty() bool {
	return !s.WebP && !s.AVIF
}

// String renders the set for the run banner: "WebP + AVIF", "WEBP" or "AVIF".
func (s FormatSet) String() string {
	switch {
	case s.WebP && s.AVIF:
		return "WebP + AVIF"
	case s.WebP:
		return "WEBP"
	case s.AVIF:
		return "AVIF"
	default:
		return "none"
	}
}
