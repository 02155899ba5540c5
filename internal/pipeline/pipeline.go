// Package pipeline drives one input file through page normalization,
// encoding and remote transcription, and writes the joined text.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"diary-ocr/internal/ocr"
	"diary-ocr/internal/page"
)

// openSource is the page.Open implementation used by Run.
// Tests replace it to feed in-memory pages.
var openSource = page.Open

type Runner struct {
	Engine ocr.Engine
	OutDir string
	DPI    int
}

func New(eng ocr.Engine, outDir string, dpi int) *Runner {
	return &Runner{Engine: eng, OutDir: outDir, DPI: dpi}
}

// OutputPath is the deterministic output location for an input file:
// same base name, suffixed with the engine name, in the output directory.
func (r *Runner) OutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(r.OutDir, name+"_"+r.Engine.Name()+".txt")
}

// Run processes one input file: pages are transcribed strictly in order,
// one request at a time, and the joined text is written once after the last
// page succeeds. Any failure aborts the file with no output written.
func (r *Runner) Run(ctx context.Context, inputPath string) (string, error) {
	src, err := openSource(inputPath, r.DPI)
	if err != nil {
		return "", err
	}
	defer src.Close()

	var parts []string
	for n := 1; ; n++ {
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", inputPath, err)
		}

		p, err := page.EncodeJPEG(img)
		if err != nil {
			return "", fmt.Errorf("%s page %d: %w", inputPath, n, err)
		}

		log.Printf("processing page %d of %s", n, filepath.Base(inputPath))
		text, err := r.Engine.Transcribe(ctx, p.Data, p.MIME)
		if err != nil {
			return "", fmt.Errorf("%s page %d: %w", inputPath, n, err)
		}
		parts = append(parts, fmt.Sprintf("=== PAGE %d ===\n%s\n", n, strings.TrimSpace(text)))
	}

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outPath := r.OutputPath(inputPath)
	if err := os.WriteFile(outPath, []byte(strings.Join(parts, "\n\n")), 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return outPath, nil
}
