package title

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/pdfdeck/pdfdeck/internal/ocr"
)

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultConfig(), slog.Default())
}

// tok builds one token; width defaults to a rough per-character estimate so
// line boxes stay plausible.
func tok(text string, lineIndex, top, left, height int, conf float64) ocr.Token {
	return ocr.Token{
		Text:       text,
		Confidence: conf,
		LineIndex:  lineIndex,
		Top:        top,
		Left:       left,
		Width:      len(text) * height / 2,
		Height:     height,
	}
}

// lineTokens splits text into word tokens sharing a line index, laid out
// left to right.
func lineTokens(text string, lineIndex, top, height int) []ocr.Token {
	var tokens []ocr.Token
	left := 100
	for _, w := range strings.Fields(text) {
		t := tok(w, lineIndex, top, left, height, 90)
		left += t.Width + height/2
		tokens = append(tokens, t)
	}
	return tokens
}

func TestExtract_EmptyStream(t *testing.T) {
	e := newTestExtractor()
	if title, ok := e.Extract(nil); ok {
		t.Errorf("expected no title for empty stream, got %q", title)
	}
	if title, ok := e.Extract([]ocr.Token{}); ok {
		t.Errorf("expected no title for empty slice, got %q", title)
	}
}

func TestExtract_WhitespaceOnlyTokens(t *testing.T) {
	e := newTestExtractor()
	tokens := []ocr.Token{
		tok("", 0, 10, 10, 20, 90),
		tok("   ", 0, 10, 40, 20, 90),
	}
	if title, ok := e.Extract(tokens); ok {
		t.Errorf("expected no title for blank tokens, got %q", title)
	}
}

func TestExtract_SingleToken(t *testing.T) {
	e := newTestExtractor()
	tokens := []ocr.Token{tok("Overview", 0, 50, 100, 30, 95)}
	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Overview" {
		t.Errorf("expected %q, got %q", "Overview", title)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Digital Transformation", 0, 50, 30)...)
	tokens = append(tokens, lineTokens("in Financial Services", 1, 85, 30)...)
	tokens = append(tokens, lineTokens("A subtitle of sorts", 2, 400, 14)...)

	first, ok1 := e.Extract(tokens)
	for i := 0; i < 10; i++ {
		got, ok := e.Extract(tokens)
		if got != first || ok != ok1 {
			t.Fatalf("run %d: expected (%q, %v), got (%q, %v)", i, first, ok1, got, ok)
		}
	}
}

func TestExtract_AllBoilerplateReturnsFirstRawLine(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Copyright 2024 Example Corp", 0, 20, 14)...)
	tokens = append(tokens, lineTokens("Page 3", 1, 900, 12)...)
	tokens = append(tokens, lineTokens("Confidential", 2, 950, 12)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected ladder fallback, not a miss")
	}
	if title != "Copyright 2024 Example Corp" {
		t.Errorf("expected first boilerplate line verbatim, got %q", title)
	}
}

func TestExtract_BoilerplateExcludedFromScoring(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	// Large watermark above a smaller legitimate title.
	tokens = append(tokens, lineTokens("CONFIDENTIAL — Gartner Usage Policy", 0, 10, 40)...)
	tokens = append(tokens, lineTokens("Quarterly Results Overview", 1, 60, 24)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Quarterly Results Overview" {
		t.Errorf("expected legitimate title, got %q", title)
	}
}

func TestExtract_MultiLineTitleMerges(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Digital Transformation", 0, 50, 30)...)
	tokens = append(tokens, lineTokens("in Financial Services", 1, 85, 30)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Digital Transformation in Financial Services" {
		t.Errorf("expected merged title, got %q", title)
	}
}

func TestExtract_SubtitleDoesNotMerge(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Digital Transformation", 0, 50, 30)...)
	// Far below and much smaller: fails both the gap and size tests.
	tokens = append(tokens, lineTokens("An implementation roadmap", 1, 400, 14)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Digital Transformation" {
		t.Errorf("expected single-line title, got %q", title)
	}
}

func TestExtract_DifferentSizedAdjacentLinesDoNotMerge(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Annual Report", 0, 50, 30)...)
	// Tightly below, but clearly smaller than the title.
	tokens = append(tokens, lineTokens("Fiscal Year Twenty Four", 1, 85, 25)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Annual Report" {
		t.Errorf("expected the larger line alone, got %q", title)
	}
}

func TestExtract_MarkerTitleReturnedAsIs(t *testing.T) {
	e := newTestExtractor()
	tokens := lineTokens("Workshop: Building Resilient Systems", 0, 50, 30)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Workshop: Building Resilient Systems" {
		t.Errorf("expected marker title verbatim, got %q", title)
	}
}

func TestExtract_MarkerPriorityWhenGroupingFails(t *testing.T) {
	// A size ratio above 1.0 makes every line miss the candidate threshold,
	// which exercises the marker-scan fallback.
	cfg := DefaultConfig()
	cfg.TitleSizeRatio = 1.5
	e := NewExtractor(cfg, slog.Default())

	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Confidential Briefing Materials", 0, 10, 40)...)
	tokens = append(tokens, lineTokens("Acme Industries", 1, 60, 36)...)
	tokens = append(tokens, lineTokens("Workshop: Building Resilient Systems", 2, 110, 24)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Workshop: Building Resilient Systems" {
		t.Errorf("expected marker line to win, got %q", title)
	}
}

func TestExtract_LargestFontFallbackWhenNoMarker(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TitleSizeRatio = 1.5
	e := NewExtractor(cfg, slog.Default())

	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Some body text here", 0, 200, 14)...)
	tokens = append(tokens, lineTokens("Acme Industries", 1, 60, 36)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Acme Industries" {
		t.Errorf("expected largest-font line, got %q", title)
	}
}

func TestExtract_ColonLedLabelKeepsRemainder(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Case Study:", 0, 50, 30)...)
	tokens = append(tokens, lineTokens("Migrating a Monolith", 1, 85, 30)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Case Study: Migrating a Monolith" {
		t.Errorf("expected label plus payload, got %q", title)
	}
}

func TestExtract_PageNumberLinesFiltered(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("7", 0, 10, 40)...)
	tokens = append(tokens, lineTokens("Market Outlook", 1, 60, 24)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Market Outlook" {
		t.Errorf("expected page number to be filtered, got %q", title)
	}
}

func TestExtract_Formatting(t *testing.T) {
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("Digital Transformation", 0, 50, 30)...)
	tokens = append(tokens, lineTokens("in Financial Services", 1, 85, 30)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != strings.TrimSpace(title) {
		t.Errorf("expected trimmed title, got %q", title)
	}
	if strings.ContainsAny(title, "\n\r") {
		t.Errorf("expected no embedded newlines, got %q", title)
	}
	if strings.Contains(title, "  ") {
		t.Errorf("expected single-space joins, got %q", title)
	}
}

func TestExtract_UnorderedStream(t *testing.T) {
	// Tokens arrive with the lower line before the upper one; positional
	// reasoning must sort by top, not trust stream order.
	e := newTestExtractor()
	var tokens []ocr.Token
	tokens = append(tokens, lineTokens("in Financial Services", 0, 85, 30)...)
	tokens = append(tokens, lineTokens("Digital Transformation", 1, 50, 30)...)

	title, ok := e.Extract(tokens)
	if !ok {
		t.Fatal("expected a title")
	}
	if title != "Digital Transformation in Financial Services" {
		t.Errorf("expected top-to-bottom assembly, got %q", title)
	}
}

func TestReconstructLines_FlushOnIndexChange(t *testing.T) {
	tokens := []ocr.Token{
		tok("alpha", 1, 10, 0, 20, 90),
		tok("beta", 1, 10, 60, 20, 90),
		tok("gamma", 2, 40, 0, 20, 90),
		// Same index as the first line but after a boundary: starts a new
		// line rather than rejoining the old one.
		tok("delta", 1, 70, 0, 20, 90),
	}

	lines := reconstructLines(tokens)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []string{"alpha beta", "gamma", "delta"}
	for i, w := range want {
		if lines[i].text != w {
			t.Errorf("line %d: expected %q, got %q", i, w, lines[i].text)
		}
	}
}

func TestReconstructLines_BlankTokensDoNotSplit(t *testing.T) {
	tokens := []ocr.Token{
		tok("alpha", 1, 10, 0, 20, 90),
		tok("  ", 1, 10, 60, 20, 0),
		tok("beta", 1, 10, 90, 20, 90),
	}
	lines := reconstructLines(tokens)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].text != "alpha beta" {
		t.Errorf("expected %q, got %q", "alpha beta", lines[0].text)
	}
}

func TestReconstructLines_Aggregates(t *testing.T) {
	tokens := []ocr.Token{
		{Text: "Tall", Confidence: 80, LineIndex: 1, Top: 52, Left: 10, Width: 40, Height: 34},
		{Text: "short", Confidence: 90, LineIndex: 1, Top: 50, Left: 60, Width: 50, Height: 20},
	}
	lines := reconstructLines(tokens)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	if l.fontSize != 34 {
		t.Errorf("expected font size 34 (max height), got %v", l.fontSize)
	}
	if l.top != 50 {
		t.Errorf("expected top 50 (min top), got %v", l.top)
	}
	if l.confidence != 85 {
		t.Errorf("expected mean confidence 85, got %v", l.confidence)
	}
	if l.left != 10 || l.width != 100 {
		t.Errorf("expected box left=10 width=100, got left=%v width=%v", l.left, l.width)
	}
}

func TestIsBoilerplate(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Copyright 2024 Example Corp", true},
		{"COPYRIGHT NOTICE", true},
		{"Confidential", true},
		{"Gartner Magic Quadrant", false},
		{"Gartner Usage Policy", true},
		{"Page 12", true},
		{"42", true},
		{"Quarterly Results Overview", false},
		{"Pageant Results", false},
	}
	for _, c := range cases {
		if got := isBoilerplate(c.text); got != c.want {
			t.Errorf("isBoilerplate(%q): expected %v, got %v", c.text, c.want, got)
		}
	}
}
