package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/Lllllllleong/documentocr/internal/imaging"
	"github.com/Lllllllleong/documentocr/internal/models"
)

// PageRecognizer turns one raster into cleaned text: normalize, recognize, clean.
type PageRecognizer struct {
	engine    Engine
	languages []models.Language
	timeout   time.Duration
}

// NewPageRecognizer builds a recognizer. Empty languages fall back to
// models.DefaultLanguages; a zero timeout disables the per-page deadline.
func NewPageRecognizer(engine Engine, languages []models.Language, timeout time.Duration) *PageRecognizer {
	if len(languages) == 0 {
		languages = models.DefaultLanguages()
	}
	return &PageRecognizer{
		engine:    engine,
		languages: append([]models.Language(nil), languages...),
		timeout:   timeout,
	}
}

// RecognizePage returns the cleaned text of img, possibly empty.
// Engine failures are returned unchanged; a page that outlives its deadline
// fails with models.ErrRecognitionTimeout.
func (p *PageRecognizer) RecognizePage(ctx context.Context, img image.Image) (string, error) {
	normalized := imaging.Normalize(img)

	pageCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.engine.Recognize(pageCtx, normalized, p.languages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w after %s", models.ErrRecognitionTimeout, p.timeout)
		}
		return "", err
	}
	return Clean(raw), nil
}
