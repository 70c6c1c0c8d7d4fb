// Package pdf validates PDF uploads and renders their pages to rasters.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Lllllllleong/documentocr/internal/imaging"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultDPI is the resolution pages are rendered at unless configured otherwise.
const DefaultDPI = 300

// Document is an opened PDF whose pages can be rendered one at a time.
// Page may be called concurrently for different pages.
type Document interface {
	PageCount() int
	// Page renders the zero-based page index.
	Page(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// Rasterizer validates PDF bytes with pdfcpu and renders pages with poppler's
// pdftoppm.
type Rasterizer struct {
	pdftoppmPath string
	dpi          int
}

// NewRasterizer returns a rasterizer rendering at dpi (DefaultDPI when <= 0).
func NewRasterizer(pdftoppmPath string, dpi int) *Rasterizer {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{pdftoppmPath: pdftoppmPath, dpi: dpi}
}

// DPI returns the render resolution.
func (r *Rasterizer) DPI() int { return r.dpi }

// Open validates data and stages it for rendering. Invalid PDFs fail with
// models.ErrUnsupportedFormat. The caller must Close the document.
func (r *Rasterizer) Open(ctx context.Context, data []byte) (Document, error) {
	pageCount, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "ocr-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(sourcePath, data, 0o600); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to stage PDF: %w", err)
	}
	return &stagedDocument{
		rasterizer: r,
		dir:        tempDir,
		source:     sourcePath,
		pageCount:  pageCount,
	}, nil
}

// PageCount validates data in relaxed mode and returns its page count.
func PageCount(data []byte) (int, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\n\r "), []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: missing PDF header", models.ErrUnsupportedFormat)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := pageCountSafe(data, conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrUnsupportedFormat, err)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", models.ErrUnsupportedFormat)
	}
	return count, nil
}

// pageCountSafe turns pdfcpu panics on malformed input into errors.
func pageCountSafe(data []byte, conf *model.Configuration) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading PDF: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), conf)
}

type stagedDocument struct {
	rasterizer *Rasterizer
	dir        string
	source     string
	pageCount  int
}

func (d *stagedDocument) PageCount() int { return d.pageCount }

func (d *stagedDocument) Page(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || index >= d.pageCount {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, d.pageCount)
	}
	pageNumber := strconv.Itoa(index + 1)
	outputPrefix := filepath.Join(d.dir, fmt.Sprintf("page-%05d", index+1))

	cmd := exec.CommandContext(ctx, d.rasterizer.pdftoppmPath,
		"-png", "-singlefile",
		"-r", strconv.Itoa(d.rasterizer.dpi),
		"-f", pageNumber, "-l", pageNumber,
		d.source, outputPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: pdftoppm page %s: %s", models.ErrUnsupportedFormat, pageNumber, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: launch %s: %v", models.ErrEngineUnavailable, d.rasterizer.pdftoppmPath, err)
	}

	outputPath := outputPrefix + ".png"
	defer os.Remove(outputPath)
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read rendered page %s: %w", pageNumber, err)
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page %s: %w", pageNumber, err)
	}
	return img, nil
}

func (d *stagedDocument) Close() error {
	return os.RemoveAll(d.dir)
}
