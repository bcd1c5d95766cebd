// Package deck renders a slide deck from a title and a sequence of page
// images. The output is a PPTX byte blob: one title slide (title plus a
// page-count subtitle) followed by one image slide per page with a page
// number label. PPTX is an OPC zip of OOXML parts; the fixed parts are
// templates and the per-deck parts are generated.
package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// Slide geometry in EMUs (914400 per inch) for a 10 x 7.5 inch slide.
const (
	slideWidthEMU  = 9144000
	slideHeightEMU = 6858000
	marginEMU      = 457200 // 0.5 inch
	imageWidthEMU  = 8229600
	maxImageHeight = 5943600
	emuPerPixel    = 9525 // at 96 DPI reference
)

// Builder assembles PPTX decks. Page images wider than MaxImageWidthPx are
// downscaled before embedding to keep deck sizes sane.
type Builder struct {
	MaxImageWidthPx int
}

func NewBuilder(maxImageWidthPx int) *Builder {
	if maxImageWidthPx <= 0 {
		maxImageWidthPx = 2000
	}
	return &Builder{MaxImageWidthPx: maxImageWidthPx}
}

// Build produces the deck for a title and page images (PNG, in page order).
func (b *Builder) Build(title string, pages [][]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("deck needs at least one page image")
	}

	images := make([][]byte, len(pages))
	for i, page := range pages {
		img, err := scaleDown(page, b.MaxImageWidthPx)
		if err != nil {
			return nil, fmt.Errorf("prepare page %d image: %w", i+1, err)
		}
		images[i] = img
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	slideCount := len(images) + 1
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(slideCount)},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", corePropsXML(title)},
		{"docProps/app.xml", appPropsXML},
		{"ppt/presentation.xml", presentationXML(slideCount)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(slideCount)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML},
		{"ppt/slides/slide1.xml", titleSlideXML(title, len(images))},
		{"ppt/slides/_rels/slide1.xml.rels", titleSlideRelsXML},
	}
	for _, p := range parts {
		if err := writePart(zw, p.name, []byte(p.content)); err != nil {
			return nil, err
		}
	}

	for i, img := range images {
		slideNum := i + 2
		cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
		if err != nil {
			return nil, fmt.Errorf("decode page %d image: %w", i+1, err)
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", slideNum), []byte(pageSlideXML(i+1, cfg))); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideNum), []byte(pageSlideRelsXML(i+1))); err != nil {
			return nil, err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/media/image%d.png", i+1), img); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize deck: %w", err)
	}
	return buf.Bytes(), nil
}

func writePart(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

// imageBox fits a page image inside the slide: fixed width, proportional
// height, clamped so tall pages never spill off the bottom.
func imageBox(cfg image.Config) (cx, cy int) {
	cx = imageWidthEMU
	cy = maxImageHeight
	if cfg.Width > 0 {
		cy = int(int64(cx) * int64(cfg.Height) / int64(cfg.Width))
		if cy > maxImageHeight {
			scale := float64(maxImageHeight) / float64(cy)
			cy = maxImageHeight
			cx = int(float64(cx) * scale)
		}
	}
	return cx, cy
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string { return xmlEscaper.Replace(s) }
