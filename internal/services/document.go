package services

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Lllllllleong/documentocr/internal/imaging"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/Lllllllleong/documentocr/internal/pdf"
	"golang.org/x/sync/errgroup"
)

// PageRecognizer turns one raster into cleaned text.
type PageRecognizer interface {
	RecognizePage(ctx context.Context, img image.Image) (string, error)
}

// PDFOpener validates PDF bytes and exposes their pages.
type PDFOpener interface {
	Open(ctx context.Context, data []byte) (pdf.Document, error)
}

// ProgressFunc receives the number of pages finished, counted as the
// contiguous prefix from page 1, and the page total.
type ProgressFunc func(pagesDone, pagesTotal int)

// DocumentOptions tunes multi-page recognition.
type DocumentOptions struct {
	// ProgressEvery is the page cadence of progress callbacks.
	ProgressEvery int
	// Workers bounds the pages recognized at once.
	Workers int
}

// DocumentRecognizer drives recognition of photos and multi-page PDFs.
type DocumentRecognizer struct {
	pages PageRecognizer
	pdfs  PDFOpener
	opts  DocumentOptions
}

// NewDocumentRecognizer wires a page recognizer and PDF opener together.
func NewDocumentRecognizer(pages PageRecognizer, pdfs PDFOpener, opts DocumentOptions) *DocumentRecognizer {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 5
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &DocumentRecognizer{pages: pages, pdfs: pdfs, opts: opts}
}

// RecognizeDocument recognizes every page of in.
//
// A photo yields a single unpaginated result. A PDF is rendered page by
// page; onProgress fires after every ProgressEvery-th page and after the
// last one. Any page failure aborts the whole document and no partial output
// is returned.
func (r *DocumentRecognizer) RecognizeDocument(ctx context.Context, in models.RawInput, onProgress ProgressFunc) (models.AggregateOutput, error) {
	switch in.Kind {
	case models.KindPhoto:
		return r.recognizePhoto(ctx, in)
	case models.KindPDFDocument:
		return r.recognizePDF(ctx, in, onProgress)
	default:
		return models.AggregateOutput{}, fmt.Errorf("%w: unknown input kind %d", models.ErrDecode, in.Kind)
	}
}

func (r *DocumentRecognizer) recognizePhoto(ctx context.Context, in models.RawInput) (models.AggregateOutput, error) {
	img, format, err := imaging.Decode(in.Data)
	if err != nil {
		return models.AggregateOutput{}, err
	}
	slog.Debug("Decoded photo.", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	text, err := r.pages.RecognizePage(ctx, img)
	if err != nil {
		return models.AggregateOutput{}, fmt.Errorf("photo: %w", err)
	}
	return models.AggregateOutput{
		Pages: []models.RecognitionResult{{PageIndex: 0, Text: text}},
	}, nil
}

func (r *DocumentRecognizer) recognizePDF(ctx context.Context, in models.RawInput, onProgress ProgressFunc) (models.AggregateOutput, error) {
	if !in.HasPDFExtension() {
		return models.AggregateOutput{}, fmt.Errorf("%w: %q", models.ErrNotAPdf, in.Filename)
	}
	doc, err := r.pdfs.Open(ctx, in.Data)
	if err != nil {
		return models.AggregateOutput{}, err
	}
	defer doc.Close()

	total := doc.PageCount()
	results := make([]models.RecognitionResult, total)
	progress := newProgressTracker(total, r.opts.ProgressEvery, onProgress)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break // a page already failed; stop queueing
		}
		pageIndex := i
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := doc.Page(gctx, pageIndex)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageIndex+1, err)
			}
			text, err := r.pages.RecognizePage(gctx, img)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageIndex+1, err)
			}
			results[pageIndex] = models.RecognitionResult{PageIndex: pageIndex, Text: text}
			progress.markDone(pageIndex)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return models.AggregateOutput{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.AggregateOutput{}, err
	}

	return models.AggregateOutput{Pages: results, Paginated: total > 1}, nil
}

// progressTracker reports progress in page order even when pages finish out
// of order. Callbacks run under the lock, so they never overlap.
type progressTracker struct {
	mu    sync.Mutex
	done  []bool
	next  int
	every int
	fn    ProgressFunc
}

func newProgressTracker(total, every int, fn ProgressFunc) *progressTracker {
	return &progressTracker{done: make([]bool, total), every: every, fn: fn}
}

func (t *progressTracker) markDone(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done[index] = true
	total := len(t.done)
	for t.next < total && t.done[t.next] {
		t.next++
		if t.fn != nil && (t.next%t.every == 0 || t.next == total) {
			t.fn(t.next, total)
		}
	}
}
