package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/docmatch/backend/internal/domain"
)

// Config holds the external tool paths used for text extraction
type Config struct {
	PdftotextPath string
	TesseractPath string
}

// FileExtractor pulls raw text out of uploaded files. Plain-text files are
// read directly; PDFs go through pdftotext and images through tesseract,
// the same binaries the usual OCR stacks wrap.
type FileExtractor struct {
	pdftotextPath string
	tesseractPath string
}

// NewFileExtractor creates an extractor, defaulting tool paths to $PATH lookup
func NewFileExtractor(config Config) *FileExtractor {
	pdftotext := config.PdftotextPath
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	tesseract := config.TesseractPath
	if tesseract == "" {
		tesseract = "tesseract"
	}
	return &FileExtractor{
		pdftotextPath: pdftotext,
		tesseractPath: tesseract,
	}
}

// Extract returns the raw text content of the file, dispatching on extension
func (e *FileExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md", ".csv":
		return string(data), nil
	case ".pdf":
		// "-" twice: read the PDF from stdin, write text to stdout
		return e.runTool(ctx, data, e.pdftotextPath, "-", "-")
	case ".png", ".jpg", ".jpeg":
		return e.runTool(ctx, data, e.tesseractPath, "stdin", "stdout")
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filename)
	}
}

// runTool feeds the file bytes to an external converter and captures its text
func (e *FileExtractor) runTool(ctx context.Context, data []byte, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %v: %s",
			domain.ErrExtractionFailed, name, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
