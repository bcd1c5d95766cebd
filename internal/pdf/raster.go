package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Rasterizer renders PDF pages to PNG images by shelling out to pdftoppm.
// DPI controls the rasterization resolution; downstream pixel heuristics
// are calibrated for 300.
type Rasterizer struct {
	DPI int
}

func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{DPI: dpi}
}

// Pages writes the PDF to a temp dir, invokes pdftoppm, and returns the
// numbered PNG outputs in page order.
func (r *Rasterizer) Pages(ctx context.Context, data []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "pdfdeck-raster-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	args := []string{"-png", "-r", strconv.Itoa(r.DPI), src, filepath.Join(dir, "page")}

	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}

	type numbered struct {
		page int
		path string
	}
	var outputs []numbered
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		outputs = append(outputs, numbered{page: n, path: filepath.Join(dir, name)})
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].page < outputs[j].page })

	pages := make([][]byte, 0, len(outputs))
	for _, o := range outputs {
		img, err := os.ReadFile(o.path)
		if err != nil {
			return nil, fmt.Errorf("read page image: %w", err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
