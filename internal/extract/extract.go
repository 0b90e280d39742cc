package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

const (
	mimePDF = "application/pdf"

	// A digital PDF with at least this many printable runes in its text
	// layer skips the OCR pass entirely.
	minTextLayerRunes = 200

	rasterDPI = 300
)

var (
	// ErrUnsupported marks corrupt or unrecognizable document input.
	ErrUnsupported = errors.New("unsupported document input")
	// ErrEngineUnavailable marks a missing or misconfigured OCR engine.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
)

// Extractor converts an uploaded file into plain text.
type Extractor interface {
	Extract(ctx context.Context, content []byte, contentType, fileName string) (string, error)
}

// Tesseract extracts text via tesseract OCR. PDFs are rasterized page by
// page with MuPDF before recognition; other inputs are treated as a single
// raster image.
type Tesseract struct {
	languages   []string
	pageWorkers int

	// ocr is swapped out in tests.
	ocr func(ctx context.Context, languages []string, image []byte) (string, error)
}

// NewTesseract constructs the production extractor.
func NewTesseract(languages []string) *Tesseract {
	return &Tesseract{
		languages:   languages,
		pageWorkers: 4,
		ocr:         tesseractOCR,
	}
}

// Extract implements Extractor.
func (t *Tesseract) Extract(ctx context.Context, content []byte, contentType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrUnsupported)
	}
	if normalizeContentType(contentType, fileName) == mimePDF {
		return t.extractPDF(ctx, content)
	}
	text, err := t.ocr(ctx, t.languages, content)
	if err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	return text, nil
}

// extractPDF validates the document, prefers its embedded text layer, and
// otherwise rasterizes every page and OCRs them in page order.
func (t *Tesseract) extractPDF(ctx context.Context, content []byte) (string, error) {
	if _, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("%w: pdf validate: %v", ErrUnsupported, err)
	}

	if text, ok := textLayer(content); ok {
		return text, nil
	}

	images, err := rasterizePages(content)
	if err != nil {
		return "", err
	}

	pages := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.pageWorkers)
	for i := range images {
		i := i
		g.Go(func() error {
			text, err := t.ocr(gctx, t.languages, images[i])
			if err != nil {
				return fmt.Errorf("ocr page %d: %w", i+1, err)
			}
			pages[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(pages, ""), nil
}

// rasterizePages renders every PDF page to a PNG image. MuPDF needs the
// document on disk; the temporary file is removed on every exit path.
func rasterizePages(content []byte) ([][]byte, error) {
	var images [][]byte
	err := withTempFile(content, func(path string) error {
		doc, err := fitz.New(path)
		if err != nil {
			return fmt.Errorf("%w: pdf open: %v", ErrUnsupported, err)
		}
		defer doc.Close()

		images = make([][]byte, 0, doc.NumPage())
		for i := 0; i < doc.NumPage(); i++ {
			img, err := doc.ImagePNG(i, rasterDPI)
			if err != nil {
				return fmt.Errorf("%w: rasterize page %d: %v", ErrUnsupported, i+1, err)
			}
			images = append(images, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// withTempFile materializes content on disk for the duration of fn. The file
// is removed on every exit path, including fn failure.
func withTempFile(content []byte, fn func(path string) error) error {
	tmp, err := os.CreateTemp("", "docqa-*.pdf")
	if err != nil {
		return fmt.Errorf("pdf temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("pdf temp write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pdf temp close: %w", err)
	}
	return fn(tmp.Name())
}

// textLayer pulls the embedded text of a digital PDF. Scanned documents have
// no usable layer and fall through to OCR.
func textLayer(content []byte) (string, bool) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", false
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", false
	}
	text := buf.String()
	if countPrintable(text) < minTextLayerRunes {
		return "", false
	}
	return text, true
}

func countPrintable(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func normalizeContentType(contentType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	if strings.ToLower(filepath.Ext(fileName)) == ".pdf" {
		return mimePDF
	}
	return clean
}

// tesseractOCR recognizes one raster image. A fresh client per call: the
// tesseract handle is not safe for concurrent use.
func tesseractOCR(ctx context.Context, languages []string, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("%w: set language: %v", ErrEngineUnavailable, err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("%w: load image: %v", ErrUnsupported, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize: %v", ErrEngineUnavailable, err)
	}
	return text, nil
}
