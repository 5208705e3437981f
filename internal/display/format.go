// Package display formats sizes and paths for console output.
package display

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes in 1024-based units with at most two decimals,
// e.g. "0 B", "512 B", "1.5 KB", "2.25 MB".
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	neg := bytes < 0
	if neg {
		bytes = -bytes
	}

	i := 0
	for n := bytes; n >= 1024 && i < len(sizeUnits)-1; n /= 1024 {
		i++
	}
	value := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100

	s := strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
	if neg {
		s = "-" + s
	}
	return s
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// RelPath shortens path relative to the working directory when it lies
// below it; otherwise path is returned unchanged.
func RelPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
