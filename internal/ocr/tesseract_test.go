package ocr

import (
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"
)

func box(word string, blockNum, parNum, lineNum, x, y, w, h int) gosseract.BoundingBox {
	return gosseract.BoundingBox{
		Box:        image.Rect(x, y, x+w, y+h),
		Word:       word,
		Confidence: 90,
		BlockNum:   blockNum,
		ParNum:     parNum,
		LineNum:    lineNum,
	}
}

func TestTokensFromBoxes_LineIndexIncrementsOnLineChange(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		box("Quarterly", 1, 1, 1, 100, 50, 200, 30),
		box("Results", 1, 1, 1, 320, 50, 150, 30),
		box("Overview", 1, 1, 2, 100, 95, 180, 30),
		box("footer", 2, 1, 1, 100, 900, 80, 12),
	}

	tokens := tokensFromBoxes(boxes)
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}

	wantIndexes := []int{0, 0, 1, 2}
	for i, want := range wantIndexes {
		if tokens[i].LineIndex != want {
			t.Errorf("token %d: expected line index %d, got %d", i, want, tokens[i].LineIndex)
		}
	}
}

func TestTokensFromBoxes_GeometryAndText(t *testing.T) {
	boxes := []gosseract.BoundingBox{box(" Hello ", 1, 1, 1, 10, 20, 100, 30)}
	tokens := tokensFromBoxes(boxes)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.Text != "Hello" {
		t.Errorf("expected trimmed text %q, got %q", "Hello", tok.Text)
	}
	if tok.Top != 20 || tok.Left != 10 || tok.Width != 100 || tok.Height != 30 {
		t.Errorf("unexpected geometry: %+v", tok)
	}
	if tok.Confidence != 90 {
		t.Errorf("expected confidence 90, got %v", tok.Confidence)
	}
}

func TestTokensFromBoxes_Empty(t *testing.T) {
	tokens := tokensFromBoxes(nil)
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %d", len(tokens))
	}
}

func TestTokensFromBoxes_ParagraphChangeStartsNewLine(t *testing.T) {
	// Tesseract restarts line numbering per paragraph; the flattened index
	// must still advance across the boundary.
	boxes := []gosseract.BoundingBox{
		box("one", 1, 1, 1, 0, 0, 50, 20),
		box("two", 1, 2, 1, 0, 40, 50, 20),
	}
	tokens := tokensFromBoxes(boxes)
	if tokens[0].LineIndex == tokens[1].LineIndex {
		t.Error("expected different line indexes across paragraph boundary")
	}
}
