package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/documentocr/internal/config"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatIDFromObject(t *testing.T) {
	assert.Equal(t, "710425319", ChatIDFromObject("uploads/710425319/scan.pdf"))
	assert.Equal(t, "team", ChatIDFromObject("inbox/team/photo.jpg"))
	assert.Equal(t, "unknown", ChatIDFromObject("scan.pdf"))
}

func TestKindForObject(t *testing.T) {
	assert.Equal(t, models.KindPhoto, KindForObject("uploads/1/a.bin", "image/jpeg"))
	assert.Equal(t, models.KindPhoto, KindForObject("uploads/1/a.PNG", ""))
	assert.Equal(t, models.KindPDFDocument, KindForObject("uploads/1/a.pdf", "application/pdf"))
	assert.Equal(t, models.KindPDFDocument, KindForObject("uploads/1/a.docx", "application/octet-stream"))
}

// recordingJob keeps the status transitions and final updates of one job.
type recordingJob struct {
	statuses  []string
	details   string
	final     map[string]interface{}
	statusErr error
}

func (j *recordingJob) SetStatus(ctx context.Context, status, errDetails string) error {
	if j.statusErr != nil {
		return j.statusErr
	}
	j.statuses = append(j.statuses, status)
	if errDetails != "" {
		j.details = errDetails
	}
	return nil
}

func (j *recordingJob) Update(ctx context.Context, updates ...firestore.Update) error {
	j.final = map[string]interface{}{}
	for _, u := range updates {
		j.final[u.Path] = u.Value
	}
	return nil
}

func TestOCRFunctionRecognize(t *testing.T) {
	chat := models.Chat{ID: "7", JobID: "job"}

	t.Run("answered failure is acknowledged", func(t *testing.T) {
		for _, cause := range []error{models.ErrEngineUnavailable, models.ErrRecognitionTimeout} {
			m := newRecordingMessenger()
			f := &OCRFunction{processor: newTestProcessor(func(context.Context, int) (string, error) {
				return "", cause
			}, &fakePDF{pages: 2}, m)}
			j := &recordingJob{}

			err := f.recognize(context.Background(), slog.Default(), j, chat, pdfInput())
			require.NoError(t, err)
			assert.Equal(t, []string{models.StatusRecognizing, models.StatusFailed}, j.statuses)
			assert.Contains(t, j.details, cause.Error())
			assert.Equal(t, []string{ReplyProcessingFailed}, m.texts)
		}
	})

	t.Run("rejected upload is acknowledged", func(t *testing.T) {
		m := newRecordingMessenger()
		f := &OCRFunction{processor: newTestProcessor(func(context.Context, int) (string, error) { return "x", nil }, &fakePDF{pages: 1}, m)}
		j := &recordingJob{}

		in := pdfInput()
		in.Filename = "notes.txt"
		require.NoError(t, f.recognize(context.Background(), slog.Default(), j, chat, in))
		assert.Equal(t, []string{models.StatusRecognizing, models.StatusFailed}, j.statuses)
		assert.Equal(t, []string{ReplyNotAPdf}, m.texts)
	})

	t.Run("delivered", func(t *testing.T) {
		m := newRecordingMessenger()
		f := &OCRFunction{processor: newTestProcessor(func(context.Context, int) (string, error) { return "x", nil }, &fakePDF{pages: 2}, m)}
		j := &recordingJob{}

		require.NoError(t, f.recognize(context.Background(), slog.Default(), j, chat, pdfInput()))
		assert.Equal(t, models.StatusDelivered, j.final["status"])
		assert.Equal(t, 2, j.final["pageCount"])
		assert.Equal(t, "inline", j.final["delivery"])
	})

	t.Run("failure before any reply is returned", func(t *testing.T) {
		m := newRecordingMessenger()
		f := &OCRFunction{processor: newTestProcessor(func(context.Context, int) (string, error) { return "x", nil }, &fakePDF{pages: 1}, m)}
		j := &recordingJob{statusErr: errors.New("firestore unavailable")}

		err := f.recognize(context.Background(), slog.Default(), j, chat, pdfInput())
		assert.Error(t, err)
		assert.Empty(t, m.texts)
		assert.Empty(t, m.progress)
	})
}

func TestOCRFunctionIgnoresReplyBucket(t *testing.T) {
	// No clients are set; reaching them would panic.
	f := &OCRFunction{config: config.Config{ReplyBucket: "replies"}}
	err := f.Process(context.Background(), models.GCSEvent{Bucket: "replies", Name: "7/3f2a.txt"})
	assert.NoError(t, err)
}
