package services

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/Lllllllleong/documentocr/internal/pdf"
)

// recordingMessenger keeps everything it is asked to send.
type recordingMessenger struct {
	mu        sync.Mutex
	texts     []string
	documents map[string]string
	progress  []string
	sendErr   error
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{documents: map[string]string{}}
}

func (m *recordingMessenger) SendText(ctx context.Context, chat models.Chat, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.texts = append(m.texts, text)
	return nil
}

func (m *recordingMessenger) SendDocument(ctx context.Context, chat models.Chat, content io.Reader, filename string) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.documents[filename] = string(data)
	return nil
}

func (m *recordingMessenger) NotifyProgress(ctx context.Context, chat models.Chat, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, text)
	return nil
}

// fakePDF serves pages whose width is the one-based page number.
type fakePDF struct {
	pages  int
	closed bool
}

func (d *fakePDF) PageCount() int { return d.pages }

func (d *fakePDF) Page(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || index >= d.pages {
		return nil, errors.New("page out of range")
	}
	return image.NewGray(image.Rect(0, 0, index+1, 1)), nil
}

func (d *fakePDF) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc *fakePDF
	err error
}

func (o *fakeOpener) Open(ctx context.Context, data []byte) (pdf.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

// pageFunc adapts a function of the one-based page number to PageRecognizer.
type pageFunc func(ctx context.Context, page int) (string, error)

func (f pageFunc) RecognizePage(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img.Bounds().Dx())
}
