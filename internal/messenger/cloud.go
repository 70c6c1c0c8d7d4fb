package messenger

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentocr/internal/gcp"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/google/uuid"
)

// Cloud writes replies into a GCS bucket under the chat's prefix and records
// progress on the chat's Firestore job document.
//
// Text replies land at <chat>/<uuid>.txt, attachments at
// <chat>/<job>/<filename>.
type Cloud struct {
	bucket *storage.BucketHandle
	jobs   *firestore.CollectionRef
	newID  func() string
}

// NewCloud returns a messenger writing to bucket and updating jobs.
func NewCloud(bucket *storage.BucketHandle, jobs *firestore.CollectionRef) *Cloud {
	return &Cloud{bucket: bucket, jobs: jobs, newID: uuid.NewString}
}

func (c *Cloud) SendText(ctx context.Context, chat models.Chat, text string) error {
	objectName := TextObjectName(chat, c.newID())
	if err := gcp.SaveToGCSAtomically(ctx, c.bucket, objectName, strings.NewReader(text), "text/plain; charset=utf-8"); err != nil {
		return fmt.Errorf("save text reply: %w", err)
	}
	return nil
}

func (c *Cloud) SendDocument(ctx context.Context, chat models.Chat, content io.Reader, filename string) error {
	objectName := DocumentObjectName(chat, c.newID(), filename)
	if err := gcp.SaveToGCSAtomically(ctx, c.bucket, objectName, content, "text/plain; charset=utf-8"); err != nil {
		return fmt.Errorf("save document reply: %w", err)
	}
	return nil
}

func (c *Cloud) NotifyProgress(ctx context.Context, chat models.Chat, text string) error {
	if chat.JobID == "" || c.jobs == nil {
		return nil
	}
	return gcp.UpdateJob(ctx, c.jobs.Doc(chat.JobID), firestore.Update{Path: "progress", Value: text})
}

// TextObjectName is where a text reply with the given id is stored.
func TextObjectName(chat models.Chat, id string) string {
	return path.Join(chatPrefix(chat), id+".txt")
}

// DocumentObjectName is where an attachment is stored. Attachments are grouped
// by job, falling back to id when the chat has no job.
func DocumentObjectName(chat models.Chat, id, filename string) string {
	group := chat.JobID
	if group == "" {
		group = id
	}
	return path.Join(chatPrefix(chat), group, path.Base(filename))
}

func chatPrefix(chat models.Chat) string {
	if chat.ID == "" {
		return "unknown"
	}
	return strings.ReplaceAll(chat.ID, "/", "_")
}
