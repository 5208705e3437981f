// Package profile holds the encoder quality profiles and the heuristic that
// picks one for an image.
package profile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind names a content category.
type Kind string

const (
	Photo      Kind = "photo"
	Graphic    Kind = "graphic"
	Screenshot Kind = "screenshot"
)

// Chroma subsampling modes for AVIF.
const (
	Chroma420 = "4:2:0"
	Chroma444 = "4:4:4"
)

// WebP holds WebP encoder parameters.
type WebP struct {
	Quality         int
	Lossless        bool
	NearLossless    bool
	AlphaQuality    int
	Effort          int // 0 (fast) .. 6 (slow)
	SmartSubsample  bool
	ReductionEffort int
}

// AVIF holds AVIF encoder parameters.
type AVIF struct {
	Quality           int
	Lossless          bool
	Effort            int // 0 (fast) .. 9 (slow)
	ChromaSubsampling string
	AlphaQuality      int
}

// Profile bundles the per-format parameters for one content category.
type Profile struct {
	Kind Kind
	WebP WebP
	AVIF AVIF
}

var profiles = map[Kind]Profile{
	Photo: {
		Kind: Photo,
		WebP: WebP{Quality: 75, AlphaQuality: 100, Effort: 6, SmartSubsample: true, ReductionEffort: 4},
		AVIF: AVIF{Quality: 65, Effort: 8, ChromaSubsampling: Chroma420, AlphaQuality: 65},
	},
	// Near-lossless keeps edges crisp; 4:4:4 keeps flat colors exact.
	Graphic: {
		Kind: Graphic,
		WebP: WebP{Quality: 90, NearLossless: true, AlphaQuality: 100, Effort: 6, ReductionEffort: 6},
		AVIF: AVIF{Quality: 80, Effort: 8, ChromaSubsampling: Chroma444, AlphaQuality: 80},
	},
	Screenshot: {
		Kind: Screenshot,
		WebP: WebP{Quality: 75, NearLossless: true, AlphaQuality: 100, Effort: 6, ReductionEffort: 6},
		AVIF: AVIF{Quality: 65, Effort: 9, ChromaSubsampling: Chroma444, AlphaQuality: 65},
	},
}

// All returns the profiles in display order.
func All() []Profile {
	return []Profile{profiles[Photo], profiles[Graphic], profiles[Screenshot]}
}

// For returns the profile of kind k.
func For(k Kind) (Profile, error) {
	p, ok := profiles[k]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", k)
	}
	return p, nil
}

// Metadata is the decoded image information the classifier looks at.
type Metadata struct {
	Width    int
	Height   int
	HasAlpha bool
}

const (
	minGraphicSide      = 200
	maxScreenshotWidth  = 1200
	maxScreenshotHeight = 800
)

// Classify picks a profile from the image size, alpha channel and the names
// of the file and its directory. The first matching rule wins:
//
//  1. "icon" or "logo" in a name, or either side under 200px: graphic
//  2. "screenshot" in a name, or alpha and smaller than 1200x800: screenshot
//  3. otherwise: photo
func Classify(meta Metadata, path string) Kind {
	dir := strings.ToLower(filepath.Dir(path))
	name := strings.ToLower(filepath.Base(path))

	if containsAny(dir, name, "icon", "logo") || meta.Width < minGraphicSide || meta.Height < minGraphicSide {
		return Graphic
	}
	if containsAny(dir, name, "screenshot") || hasTextContent(meta) {
		return Screenshot
	}
	return Photo
}

// hasTextContent guesses at UI captures with transparent backgrounds.
func hasTextContent(meta Metadata) bool {
	return meta.HasAlpha && meta.Width < maxScreenshotWidth && meta.Height < maxScreenshotHeight
}

func containsAny(dir, name string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(dir, w) || strings.Contains(name, w) {
			return true
		}
	}
	return false
}
