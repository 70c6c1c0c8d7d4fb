//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/otiai10/gosseract/v2"
)

// GosseractAvailable reports whether the libtesseract-backed engine was compiled in.
const GosseractAvailable = true

// GosseractEngine recognizes pages in-process through libtesseract.
// The engine mode is fixed when the library initializes and is left at the
// library default, which is the same mode the CLI engine requests.
type GosseractEngine struct {
	settings Settings
}

// NewGosseractEngine returns an engine backed by gosseract.
func NewGosseractEngine(settings Settings) (*GosseractEngine, error) {
	return &GosseractEngine{settings: settings}, nil
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(ctx context.Context, img *image.Gray, languages []models.Language) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page for gosseract: %w", err)
	}

	type result struct {
		text string
		err  error
	}
	// The client call blocks without observing ctx, so it runs aside.
	resCh := make(chan result, 1)
	go func() {
		text, err := e.recognize(buf.Bytes(), languages)
		resCh <- result{text, err}
	}()
	select {
	case r := <-resCh:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *GosseractEngine) recognize(data []byte, languages []models.Language) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if codes := tesseractLanguageCodes(languages); len(codes) > 0 {
		if err := client.SetLanguage(codes...); err != nil {
			return "", fmt.Errorf("%w: set languages: %v", models.ErrEngineUnavailable, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(e.settings.PageSegMode)); err != nil {
		return "", fmt.Errorf("%w: set page segmentation: %v", models.ErrEngineUnavailable, err)
	}
	if e.settings.Whitelist != "" {
		if err := client.SetWhitelist(e.settings.Whitelist); err != nil {
			return "", fmt.Errorf("%w: set whitelist: %v", models.ErrEngineUnavailable, err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("%w: set image: %v", models.ErrEngineUnavailable, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize: %v", models.ErrEngineUnavailable, err)
	}
	return text, nil
}
