// Package title infers a document title from per-token OCR output for the
// first page of a PDF. Tokens are fused into visual lines, boilerplate is
// filtered out, the remaining lines are scored by typographic prominence
// near the top of the page, and adjacent similarly-sized lines are merged
// into one title phrase. When the primary heuristic finds nothing, a ladder
// of progressively less selective fallbacks guarantees a deterministic
// answer for any input.
package title

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/pdfdeck/pdfdeck/internal/ocr"
)

// line is a reconstructed visual text line built from tokens that share an
// OCR-assigned line index.
type line struct {
	text       string
	fontSize   float64 // max token height; the largest glyph dominates
	top        float64 // min token top
	left       float64
	width      float64
	confidence float64 // mean token confidence
}

func (l line) bottom() float64 { return l.top + l.fontSize }

// group is a maximal run of adjacent, similarly-sized lines treated as one
// title block.
type group struct {
	lines []line
}

func (g group) meanFontSize() float64 {
	if len(g.lines) == 0 {
		return 0
	}
	var sum float64
	for _, l := range g.lines {
		sum += l.fontSize
	}
	return sum / float64(len(g.lines))
}

// Extractor runs the title heuristic. It is stateless apart from its
// configuration and safe for concurrent use across pages.
type Extractor struct {
	cfg Config
	log *slog.Logger
}

func NewExtractor(cfg Config, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, log: log}
}

// Extract returns the best-guess title for the page's token stream, or
// ok=false when no usable text exists. It never panics past this boundary;
// internal failures are logged and reported as a miss so that batch
// processing degrades per-document instead of aborting.
func (e *Extractor) Extract(tokens []ocr.Token) (title string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("title extraction failed", "panic", r)
			title, ok = "", false
		}
	}()

	raw := reconstructLines(tokens)
	if len(raw) == 0 {
		return "", false
	}

	survivors := dropBoilerplate(raw)
	if len(survivors) == 0 {
		// Everything matched the boilerplate filter. A boilerplate line
		// still beats no title at all.
		return strings.TrimSpace(raw[0].text), true
	}

	if groups := e.groupCandidates(survivors); len(groups) > 0 {
		return e.assemble(pickGroup(groups)), true
	}

	// Grouping produced nothing usable. Rank all survivors largest font
	// first (topmost on ties) and prefer an explicitly marked title among
	// the leading few.
	ranked := rankByProminence(survivors)
	limit := e.cfg.MarkerScanLimit
	if limit > len(ranked) {
		limit = len(ranked)
	}
	for _, l := range ranked[:limit] {
		if markerPattern.MatchString(l.text) {
			return strings.TrimSpace(l.text), true
		}
	}
	return strings.TrimSpace(ranked[0].text), true
}

// reconstructLines folds the token stream into lines. Tokens are consumed
// in stream order; a line flushes whenever the line index changes. Blank
// tokens are skipped without breaking the current line. Every aggregate
// (font size, top, confidence) is computed over exactly the token set that
// contributed text to the line.
func reconstructLines(tokens []ocr.Token) []line {
	var lines []line
	var buf []ocr.Token
	current := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		lines = append(lines, buildLine(buf))
		buf = buf[:0]
	}

	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		if len(buf) > 0 && tok.LineIndex != current {
			flush()
		}
		current = tok.LineIndex
		buf = append(buf, tok)
	}
	flush()
	return lines
}

func buildLine(tokens []ocr.Token) line {
	texts := make([]string, 0, len(tokens))
	var maxHeight float64
	var confSum float64
	minTop := math.MaxFloat64
	minLeft := math.MaxFloat64
	var maxRight float64

	for _, tok := range tokens {
		texts = append(texts, tok.Text)
		if h := float64(tok.Height); h > maxHeight {
			maxHeight = h
		}
		if t := float64(tok.Top); t < minTop {
			minTop = t
		}
		if l := float64(tok.Left); l < minLeft {
			minLeft = l
		}
		if r := float64(tok.Left + tok.Width); r > maxRight {
			maxRight = r
		}
		confSum += tok.Confidence
	}

	return line{
		text:       strings.Join(texts, " "),
		fontSize:   maxHeight,
		top:        minTop,
		left:       minLeft,
		width:      maxRight - minLeft,
		confidence: confSum / float64(len(tokens)),
	}
}

func dropBoilerplate(lines []line) []line {
	kept := make([]line, 0, len(lines))
	for _, l := range lines {
		if isBoilerplate(l.text) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

// groupCandidates restricts attention to the header band near the top of
// the page, selects lines at or above the title-size threshold, and merges
// adjacent mergeable lines into groups. Returned groups are in top-to-
// bottom order.
func (e *Extractor) groupCandidates(survivors []line) []group {
	sorted := make([]line, len(survivors))
	copy(sorted, survivors)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].top < sorted[j].top })

	bandTop := sorted[0].top
	var band []line
	for _, l := range sorted {
		if l.top-bandTop <= e.cfg.HeaderBandPx {
			band = append(band, l)
		}
	}
	if len(band) == 0 {
		return nil
	}

	var maxFont float64
	for _, l := range band {
		if l.fontSize > maxFont {
			maxFont = l.fontSize
		}
	}
	threshold := e.cfg.TitleSizeRatio * maxFont

	var candidates []line
	for _, l := range band {
		if l.fontSize >= threshold {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	groups := []group{{lines: []line{candidates[0]}}}
	for _, next := range candidates[1:] {
		cur := &groups[len(groups)-1]
		prev := cur.lines[len(cur.lines)-1]
		gap := next.top - prev.bottom()
		if gap <= e.cfg.MaxLineGapPx && math.Abs(next.fontSize-prev.fontSize) < e.cfg.MaxFontDeltaPx {
			cur.lines = append(cur.lines, next)
		} else {
			groups = append(groups, group{lines: []line{next}})
		}
	}
	return groups
}

// pickGroup ranks groups by mean font size, largest first. The sort is
// stable so that on ties the topmost group wins.
func pickGroup(groups []group) group {
	ranked := make([]group, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].meanFontSize() > ranked[j].meanFontSize()
	})
	return ranked[0]
}

// assemble joins the chosen group's lines, top to bottom, into one phrase.
func (e *Extractor) assemble(g group) string {
	lines := make([]line, len(g.lines))
	copy(lines, g.lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].top < lines[j].top })

	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.text)
	}
	// The full joined phrase is the title in every case: a
	// "Workshop:"-style marker prefix is already part of a well-formed
	// title, and a colon-led first line is a label whose payload follows
	// on the next lines, not a discardable subtitle.
	return strings.TrimSpace(strings.Join(texts, " "))
}

// rankByProminence orders lines largest font first, topmost on ties.
func rankByProminence(lines []line) []line {
	ranked := make([]line, len(lines))
	copy(ranked, lines)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].fontSize != ranked[j].fontSize {
			return ranked[i].fontSize > ranked[j].fontSize
		}
		return ranked[i].top < ranked[j].top
	})
	return ranked
}
