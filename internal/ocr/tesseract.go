package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes page images with a local Tesseract install via
// gosseract. A fresh client is created per call; gosseract clients are not
// safe for concurrent reuse.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
	dpi           int
}

// NewTesseractEngine builds a Tesseract-backed engine. languages are
// Tesseract trained-data names (e.g. "eng"); dpi is the rasterization
// resolution hint, zero means unknown.
func NewTesseractEngine(languages []string, dpi int) *TesseractEngine {
	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		languages:     languages,
		dpi:           dpi,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs word-level OCR over one page image and returns the token
// stream in recognition order.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) ([]Token, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if e.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.dpi)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}
	return tokensFromBoxes(boxes), nil
}

// tokensFromBoxes flattens Tesseract's block/paragraph/line numbering into a
// single line index that increases whenever any of the three change. The
// index distinguishes visual lines; it is not required to be contiguous.
func tokensFromBoxes(boxes []gosseract.BoundingBox) []Token {
	tokens := make([]Token, 0, len(boxes))
	lineIndex := -1
	var prevBlock, prevPar, prevLine int
	for i, b := range boxes {
		if i == 0 || b.BlockNum != prevBlock || b.ParNum != prevPar || b.LineNum != prevLine {
			lineIndex++
			prevBlock, prevPar, prevLine = b.BlockNum, b.ParNum, b.LineNum
		}
		tokens = append(tokens, Token{
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence,
			LineIndex:  lineIndex,
			Top:        b.Box.Min.Y,
			Left:       b.Box.Min.X,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
		})
	}
	return tokens
}
