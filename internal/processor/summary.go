package processor

import (
	"math"
	"strconv"

	"pixpress/internal/config"
	"pixpress/internal/display"
)

// SummaryLine is one label/value row of the end-of-run summary.
type SummaryLine struct {
	Label string
	Value string
}

// Savings returns the percentage saved by encoded relative to original,
// rounded to one decimal place. Negative when the output grew.
func Savings(original, encoded int64) float64 {
	if original <= 0 {
		return 0
	}
	pct := float64(original-encoded) / float64(original) * 100
	return math.Round(pct*10) / 10
}

// Summarize builds the summary rows. Size and savings rows appear only when
// at least one file was converted, and per format only when it wrote bytes.
func Summarize(s Stats, formats config.FormatSet) []SummaryLine {
	lines := []SummaryLine{
		{Label: "Processed", Value: strconv.Itoa(s.Processed)},
		{Label: "Skipped", Value: strconv.Itoa(s.Skipped)},
		{Label: "Errors", Value: strconv.Itoa(s.Errored)},
	}
	if s.Processed == 0 {
		return lines
	}

	lines = append(lines, SummaryLine{Label: "Originals", Value: display.FormatSize(s.OriginalBytes)})
	for _, f := range formats.Formats() {
		total := s.Encoded(f)
		if total == 0 {
			continue
		}
		lines = append(lines, SummaryLine{
			Label: f.Label(),
			Value: display.FormatSize(total) + " (saved " + display.FormatPercent(Savings(s.OriginalBytes, total)) + ")",
		})
	}
	return lines
}
