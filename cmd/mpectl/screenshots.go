package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/iafilius/MPEViewer/src/render"
)

// writePNGs writes the on-screen image of every handle under outDir as
// <slug>-NN.png, in display order. Released handles are skipped.
func writePNGs(outDir, slug string, handles []render.Handle) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	var written []string
	for i, h := range handles {
		img := h.Image()
		if img == nil {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return written, fmt.Errorf("png encode %q: %w", h.Spec().Title, err)
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s-%02d.png", slug, i+1))
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", outPath, err)
		}
		written = append(written, outPath)
	}
	return written, nil
}
