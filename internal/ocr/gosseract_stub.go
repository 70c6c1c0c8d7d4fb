//go:build !gosseract

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// GosseractAvailable reports whether the libtesseract-backed engine was compiled in.
// Rebuild with -tags gosseract to enable it.
const GosseractAvailable = false

// GosseractEngine is a placeholder used when libtesseract support is not compiled in.
type GosseractEngine struct{}

// NewGosseractEngine reports that the in-process engine is unavailable.
func NewGosseractEngine(Settings) (*GosseractEngine, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags gosseract", models.ErrEngineUnavailable)
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(context.Context, *image.Gray, []models.Language) (string, error) {
	return "", fmt.Errorf("%w: rebuild with -tags gosseract", models.ErrEngineUnavailable)
}
