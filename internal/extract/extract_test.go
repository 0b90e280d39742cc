package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func stubbed(ocr func(ctx context.Context, languages []string, image []byte) (string, error)) *Tesseract {
	t := NewTesseract([]string{"eng"})
	t.ocr = ocr
	return t
}

func TestNormalizeContentType(t *testing.T) {
	cases := []struct {
		contentType string
		fileName    string
		want        string
	}{
		{"application/pdf", "report.pdf", "application/pdf"},
		{"APPLICATION/PDF; charset=binary", "report.pdf", "application/pdf"},
		{"image/png", "scan.png", "image/png"},
		{"", "report.PDF", "application/pdf"},
		{"application/octet-stream", "report.pdf", "application/pdf"},
		{"application/octet-stream", "scan.png", "application/octet-stream"},
		{"", "scan.png", ""},
	}
	for _, tc := range cases {
		if got := normalizeContentType(tc.contentType, tc.fileName); got != tc.want {
			t.Errorf("normalizeContentType(%q, %q) = %q, want %q", tc.contentType, tc.fileName, got, tc.want)
		}
	}
}

func TestExtractImageUsesOCR(t *testing.T) {
	var gotImage []byte
	ex := stubbed(func(ctx context.Context, languages []string, image []byte) (string, error) {
		gotImage = image
		return "Revenue: $500,000", nil
	})

	text, err := ex.Extract(context.Background(), []byte("png-bytes"), "image/png", "scan.png")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Revenue: $500,000" {
		t.Fatalf("unexpected text %q", text)
	}
	if string(gotImage) != "png-bytes" {
		t.Fatalf("ocr received %q", gotImage)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	ex := stubbed(nil)
	if _, err := ex.Extract(context.Background(), nil, "image/png", "scan.png"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractPropagatesOCRError(t *testing.T) {
	ex := stubbed(func(ctx context.Context, languages []string, image []byte) (string, error) {
		return "", fmt.Errorf("%w: tessdata missing", ErrEngineUnavailable)
	})
	_, err := ex.Extract(context.Background(), []byte("png-bytes"), "image/jpeg", "scan.jpg")
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	ex := stubbed(nil)
	_, err := ex.Extract(context.Background(), []byte("not a pdf"), "application/pdf", "report.pdf")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractHonorsCanceledContext(t *testing.T) {
	ex := stubbed(func(ctx context.Context, languages []string, image []byte) (string, error) {
		return "should not run", nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.Extract(ctx, []byte("png-bytes"), "image/png", "scan.png"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWithTempFileRemovesFileOnSuccess(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	var seen string
	err := withTempFile([]byte("pdf-bytes"), func(path string) error {
		seen = path
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if string(data) != "pdf-bytes" {
			t.Errorf("unexpected temp content %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with temp file: %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("temp file %s still present after success", seen)
	}
}

func TestWithTempFileRemovesFileOnFailure(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	var seen string
	err := withTempFile([]byte("pdf-bytes"), func(path string) error {
		seen = path
		return errors.New("decode failed")
	})
	if err == nil || err.Error() != "decode failed" {
		t.Fatalf("expected decode failure, got %v", err)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("temp file %s still present after failure", seen)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not empty after extraction: %v", entries)
	}
}

func TestCountPrintable(t *testing.T) {
	if got := countPrintable("Revenue 2024"); got != 11 {
		t.Fatalf("countPrintable = %d, want 11", got)
	}
	if got := countPrintable(strings.Repeat(" \n\t", 50)); got != 0 {
		t.Fatalf("countPrintable whitespace = %d, want 0", got)
	}
}
