package title

import "regexp"

// Config holds the tunable thresholds of the heuristic. All pixel values
// are calibrated for a ~300 DPI rasterization; callers rasterizing at a
// different resolution should scale them proportionally.
type Config struct {
	// HeaderBandPx is the vertical window, measured from the topmost
	// surviving line, within which title candidates are considered.
	HeaderBandPx float64

	// TitleSizeRatio is the fraction of the header band's maximum font
	// size a line must reach to be a title candidate.
	TitleSizeRatio float64

	// MaxLineGapPx is the largest vertical gap between the bottom of one
	// candidate line and the top of the next that still merges them into
	// one title block.
	MaxLineGapPx float64

	// MaxFontDeltaPx is the largest font-size difference between adjacent
	// candidate lines that still merges them. Keeps subtitles out of the
	// title block.
	MaxFontDeltaPx float64

	// MarkerScanLimit caps how many of the largest-font lines are scanned
	// for a presentation-type marker when grouping yields nothing.
	MarkerScanLimit int
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		HeaderBandPx:    300,
		TitleSizeRatio:  0.8,
		MaxLineGapPx:    30,
		MaxFontDeltaPx:  4,
		MarkerScanLimit: 5,
	}
}

// boilerplatePatterns match lines that are never titles: vendor usage
// policies, legal stamps, and page headers/footers. Matching is
// case-insensitive and runs before any prominence scoring, since a large
// watermark would otherwise outrank the real title.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gartner.*usage policy`),
	regexp.MustCompile(`(?i)copyright`),
	regexp.MustCompile(`(?i)confidential`),
	regexp.MustCompile(`(?i)\bpage \d+\b`),
	regexp.MustCompile(`^\s*\d+\s*$`),
}

// markerPattern recognizes titles that open with a presentation-type label
// and a colon. Such titles are already well-formed and are returned as-is.
var markerPattern = regexp.MustCompile(`(?i)^\s*(workshop|webinar|seminar|presentation)\s*:`)

func isBoilerplate(text string) bool {
	for _, p := range boilerplatePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
