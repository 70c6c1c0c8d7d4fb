package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyFor(t *testing.T) {
	assert.Equal(t, ReplyNotAPdf, ReplyFor(fmt.Errorf("wrap: %w", models.ErrNotAPdf)))
	assert.Equal(t, ReplyUnsupported, ReplyFor(models.ErrUnsupportedFormat))
	assert.Equal(t, ReplyUnsupported, ReplyFor(models.ErrDecode))
	assert.Equal(t, ReplyProcessingFailed, ReplyFor(models.ErrEngineUnavailable))
	assert.Equal(t, ReplyProcessingFailed, ReplyFor(models.ErrRecognitionTimeout))

	assert.True(t, IsUserError(models.ErrUnsupportedFormat))
	assert.False(t, IsUserError(models.ErrEngineUnavailable))
}

func newTestProcessor(pages pageFunc, doc *fakePDF, m Messenger) *Processor {
	recognizer := NewDocumentRecognizer(pages, &fakeOpener{doc: doc}, DocumentOptions{ProgressEvery: 2, Workers: 1})
	return NewProcessor(recognizer, NewDispatcher(4000, "", ""), m)
}

func TestProcessor_Handle(t *testing.T) {
	chat := models.Chat{ID: "7", JobID: "job"}

	t.Run("delivers and reports progress", func(t *testing.T) {
		m := newRecordingMessenger()
		p := newTestProcessor(func(context.Context, int) (string, error) { return "x", nil }, &fakePDF{pages: 3}, m)

		outcome, err := p.Handle(context.Background(), chat, pdfInput())
		require.NoError(t, err)
		assert.Equal(t, Outcome{Pages: 3, Delivery: models.DeliveryInline}, outcome)
		assert.Equal(t, []string{ReplyStarted, ProgressReply(2, 3), ProgressReply(3, 3)}, m.progress)
		require.Len(t, m.texts, 1)
		assert.Contains(t, m.texts[0], "--- Page 3 ---\nx\n")
	})

	t.Run("empty result is answered and succeeds", func(t *testing.T) {
		m := newRecordingMessenger()
		p := newTestProcessor(func(context.Context, int) (string, error) { return "", nil }, &fakePDF{pages: 1}, m)

		outcome, err := p.Handle(context.Background(), chat, pdfInput())
		require.NoError(t, err)
		assert.True(t, outcome.Empty)
		assert.Equal(t, []string{ReplyNothingFound}, m.texts)
	})

	t.Run("failure sends a generic reply", func(t *testing.T) {
		m := newRecordingMessenger()
		p := newTestProcessor(func(context.Context, int) (string, error) {
			return "", errors.New("tesseract: exit status 1: /tmp/secret path")
		}, &fakePDF{pages: 2}, m)

		_, err := p.Handle(context.Background(), chat, pdfInput())
		require.Error(t, err)
		assert.Equal(t, []string{ReplyProcessingFailed}, m.texts)
	})

	t.Run("not a pdf", func(t *testing.T) {
		m := newRecordingMessenger()
		p := newTestProcessor(func(context.Context, int) (string, error) { return "x", nil }, &fakePDF{pages: 1}, m)

		in := pdfInput()
		in.Filename = "notes.txt"
		_, err := p.Handle(context.Background(), chat, in)
		assert.ErrorIs(t, err, models.ErrNotAPdf)
		assert.Equal(t, []string{ReplyNotAPdf}, m.texts)
	})
}
