package ocr

import "context"

// Token is one OCR-recognized word on a rasterized page. Coordinates are in
// pixels with the origin at the top-left of the image, at whatever
// resolution the page was rasterized at.
type Token struct {
	Text       string
	Confidence float64 // engine certainty, 0-100
	LineIndex  int     // engine-assigned line grouping, monotonically increasing
	Top        int
	Left       int
	Width      int
	Height     int // proxy for font size
}

// Engine produces the token stream for a single page image. Implementations
// may be backed by local libraries or remote services; callers only depend
// on the token contract.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) ([]Token, error)
}
