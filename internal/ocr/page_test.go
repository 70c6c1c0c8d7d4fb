package ocr

import (
	"context"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text  string
	err   error
	delay time.Duration

	gotLanguages []models.Language
	gotBounds    image.Rectangle
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, img *image.Gray, languages []models.Language) (string, error) {
	f.gotLanguages = languages
	f.gotBounds = img.Bounds()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func TestRecognizePageCleansEngineOutput(t *testing.T) {
	engine := &fakeEngine{text: "  Привет мир  \n\n"}
	p := NewPageRecognizer(engine, nil, 0)
	text, err := p.RecognizePage(context.Background(), image.NewRGBA(image.Rect(0, 0, 30, 20)))
	require.NoError(t, err)
	assert.Equal(t, "Привет мир", text)
	assert.Equal(t, models.DefaultLanguages(), engine.gotLanguages)
	assert.Equal(t, image.Rect(0, 0, 30, 20), engine.gotBounds)
}

func TestRecognizePageLanguageOverride(t *testing.T) {
	engine := &fakeEngine{}
	p := NewPageRecognizer(engine, []models.Language{"deu"}, 0)
	_, err := p.RecognizePage(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, []models.Language{"deu"}, engine.gotLanguages)
}

func TestRecognizePagePropagatesEngineUnavailable(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("%w: boom", models.ErrEngineUnavailable)}
	p := NewPageRecognizer(engine, nil, 0)
	_, err := p.RecognizePage(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	assert.ErrorIs(t, err, models.ErrEngineUnavailable)
}

func TestRecognizePageTimeout(t *testing.T) {
	engine := &fakeEngine{delay: time.Second}
	p := NewPageRecognizer(engine, nil, 20*time.Millisecond)
	_, err := p.RecognizePage(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	assert.ErrorIs(t, err, models.ErrRecognitionTimeout)
}

func TestRecognizePageParentCancellationIsNotTimeout(t *testing.T) {
	engine := &fakeEngine{delay: time.Second}
	p := NewPageRecognizer(engine, nil, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.RecognizePage(ctx, image.NewGray(image.Rect(0, 0, 2, 2)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, models.ErrRecognitionTimeout)
}
