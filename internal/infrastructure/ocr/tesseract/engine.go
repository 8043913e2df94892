package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// Config holds the external tool setup for the local OCR engine. Binary
// fields accept a name on PATH or an absolute path.
type Config struct {
	Tesseract string // default "tesseract"
	Pdftoppm  string // default "pdftoppm"

	Languages string // tesseract -l value, default "fra+eng"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit
	PSM       int    // page segmentation mode, 0 = tesseract default
}

// Engine is the local OCR backend for printed documents. PDFs with a usable
// text layer skip OCR entirely; scanned PDFs are rasterized page by page.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Languages == "" {
		cfg.Languages = "fra+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, data []byte, isPDF bool) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("tesseract: empty document")
	}
	if isPDF {
		return e.recognizePDF(ctx, data)
	}
	return e.recognizeImage(ctx, data)
}

func (e *Engine) recognizePDF(ctx context.Context, data []byte) (string, error) {
	if text, err := textLayer(data, e.cfg.MaxPages); err == nil && domain.IsUsableText(text) {
		e.logger.Debug("ocr.pdf_text_layer", "bytes", len(text))
		return text, nil
	}

	tmpDir, err := os.MkdirTemp("", "docintake-ocr-*")
	if err != nil {
		return "", fmt.Errorf("tesseract: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("tesseract: write input: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("tesseract: pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("tesseract: pdftoppm produced no pages")
	}

	var b strings.Builder
	var firstErr error
	recognized := 0
	for i, page := range pages {
		text, err := e.runTesseract(ctx, page)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(strings.TrimSpace(text))
		recognized++
	}
	if recognized == 0 {
		return "", fmt.Errorf("tesseract: no page recognized: %w", firstErr)
	}
	return b.String(), nil
}

func (e *Engine) recognizeImage(ctx context.Context, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "docintake-ocr-*.img")
	if err != nil {
		return "", fmt.Errorf("tesseract: temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("tesseract: write input: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("tesseract: close input: %w", err)
	}

	return e.runTesseract(ctx, tmpFile.Name())
}

func (e *Engine) runTesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// textLayer pulls embedded text from a born-digital PDF, with the same page
// markers the OCR path emits. Scanned PDFs typically yield nothing here.
// The parser panics on some malformed files, so failures of any shape just
// route the document to rasterization.
func textLayer(data []byte, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	total := reader.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n", i)
		b.WriteString(strings.TrimSpace(text))
	}
	return b.String(), nil
}
