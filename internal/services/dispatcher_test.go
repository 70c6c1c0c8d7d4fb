package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bareOutput(text string) models.AggregateOutput {
	return models.AggregateOutput{Pages: []models.RecognitionResult{{Text: text}}}
}

func TestDeliver(t *testing.T) {
	chat := models.Chat{ID: "42"}

	t.Run("at the limit is inline", func(t *testing.T) {
		m := newRecordingMessenger()
		text := strings.Repeat("a", 4000)
		decision, err := NewDispatcher(4000, "", "").Deliver(context.Background(), chat, bareOutput(text), m)
		require.NoError(t, err)
		assert.Equal(t, models.DeliveryInline, decision)
		assert.Equal(t, []string{text}, m.texts)
		assert.Empty(t, m.documents)
	})

	t.Run("over the limit is an attachment", func(t *testing.T) {
		m := newRecordingMessenger()
		text := strings.Repeat("я", 4001)
		decision, err := NewDispatcher(4000, "", "").Deliver(context.Background(), chat, bareOutput(text), m)
		require.NoError(t, err)
		assert.Equal(t, models.DeliveryAttachment, decision)
		assert.Empty(t, m.texts)
		assert.Equal(t, map[string]string{"recognized_text.txt": text}, m.documents)
	})

	t.Run("whitespace sends nothing", func(t *testing.T) {
		m := newRecordingMessenger()
		_, err := NewDispatcher(4000, "", "").Deliver(context.Background(), chat, bareOutput(" \n\t "), m)
		assert.ErrorIs(t, err, models.ErrEmptyResult)
		assert.Empty(t, m.texts)
		assert.Empty(t, m.documents)
	})

	t.Run("blank pages with markers still count", func(t *testing.T) {
		m := newRecordingMessenger()
		output := models.AggregateOutput{Pages: []models.RecognitionResult{{PageIndex: 0}, {PageIndex: 1}}, Paginated: true}
		_, err := NewDispatcher(4000, "", "").Deliver(context.Background(), chat, output, m)
		require.NoError(t, err)
		assert.Equal(t, []string{"--- Page 1 ---\n\n\n--- Page 2 ---\n\n"}, m.texts)
	})
}

func TestDeliver_AttachmentTempFileRemoved(t *testing.T) {
	for _, sendErr := range []error{nil, errors.New("transport down")} {
		dir := t.TempDir()
		d := NewDispatcher(10, "out.txt", dir)
		m := newRecordingMessenger()
		m.sendErr = sendErr

		_, err := d.Deliver(context.Background(), models.Chat{ID: "1"}, bareOutput(strings.Repeat("b", 11)), m)
		if sendErr != nil {
			assert.ErrorIs(t, err, sendErr)
		} else {
			assert.NoError(t, err)
		}
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}
