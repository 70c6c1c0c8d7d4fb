package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentocr/internal/config"
	"github.com/Lllllllleong/documentocr/internal/gcp"
	"github.com/Lllllllleong/documentocr/internal/ocr"
	"github.com/Lllllllleong/documentocr/internal/pdf"
)

// NewEngine builds the recognition engine selected by cfg.Engine. The
// returned close function releases engine resources and is never nil.
func NewEngine(ctx context.Context, cfg config.Config) (ocr.Engine, func() error, error) {
	settings := ocr.DefaultSettings()
	noop := func() error { return nil }

	switch cfg.Engine {
	case config.EngineTesseract:
		return ocr.NewTesseractEngine(cfg.TesseractPath, settings), noop, nil
	case config.EngineGosseract:
		engine, err := ocr.NewGosseractEngine(settings)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gosseract engine: %w", err)
		}
		return engine, noop, nil
	case config.EngineVertex:
		vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.VertexModel)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create vertex client: %w", err)
		}
		return ocr.NewVertexEngine(vertexClient.RecognizerModel, settings), vertexClient.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// NewPipeline assembles normalizer, engine, cleaner, rasterizer and
// dispatcher into a Processor replying through messenger.
func NewPipeline(cfg config.Config, engine ocr.Engine, messenger Messenger) *Processor {
	pages := ocr.NewPageRecognizer(engine, cfg.Languages, cfg.PageTimeout)
	rasterizer := pdf.NewRasterizer(cfg.PdftoppmPath, cfg.PDFRasterDPI)
	recognizer := NewDocumentRecognizer(pages, rasterizer, DocumentOptions{
		ProgressEvery: cfg.ProgressEveryNPages,
		Workers:       cfg.Workers,
	})
	dispatcher := NewDispatcher(cfg.InlineLengthThreshold, cfg.AttachmentName, cfg.TempDir)
	return NewProcessor(recognizer, dispatcher, messenger)
}
