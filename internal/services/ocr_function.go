package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentocr/internal/config"
	"github.com/Lllllllleong/documentocr/internal/gcp"
	"github.com/Lllllllleong/documentocr/internal/messenger"
	"github.com/Lllllllleong/documentocr/internal/models"
)

// OCRFunction recognizes uploads finalized in the upload bucket and replies
// through the reply bucket, recording each request as a Firestore job.
type OCRFunction struct {
	storageClient   *storage.Client
	firestoreClient *firestore.Client
	processor       *Processor
	closeEngine     func() error
	config          config.Config
}

// NewOCRFunction loads configuration and creates every client the function needs.
func NewOCRFunction(ctx context.Context) (*OCRFunction, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCloud(); err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	engine, closeEngine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	replies := messenger.NewCloud(storageClient.Bucket(cfg.ReplyBucket), firestoreClient.Collection(cfg.CollectionName))
	f := &OCRFunction{
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		processor:       NewPipeline(cfg, engine, replies),
		closeEngine:     closeEngine,
		config:          cfg,
	}
	slog.Info("OCR function initialized.", "engine", engine.Name(), "replyBucket", cfg.ReplyBucket)
	return f, nil
}

// Close releases the engine and the GCP clients.
func (f *OCRFunction) Close() error {
	return errors.Join(f.closeEngine(), f.storageClient.Close(), f.firestoreClient.Close())
}

// Process handles one finalized upload. Once the user has been answered the
// event is acknowledged, whatever the outcome; only failures before that point
// are returned to the runtime.
func (f *OCRFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if e.Bucket == f.config.ReplyBucket {
		logCtx.Warn("Ignoring object in the reply bucket.")
		return nil
	}
	logCtx.Info("Processing new GCS object.", "contentType", e.ContentType, "size", e.Size)

	chat := models.Chat{ID: ChatIDFromObject(e.Name)}
	in := models.RawInput{Kind: KindForObject(e.Name, e.ContentType), Filename: path.Base(e.Name)}

	docRef, err := f.createJob(ctx, chat, in)
	if err != nil {
		logCtx.Error("Failed to create job document", "error", err)
		return err
	}
	tracker := firestoreJob{ref: docRef}
	chat.JobID = docRef.ID
	logCtx = logCtx.With("jobId", docRef.ID, "chatId", chat.ID)

	in.Data, err = gcp.ReadObject(ctx, f.storageClient, e.Bucket, e.Name, f.config.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, gcp.ErrObjectTooLarge) {
			f.handleError(ctx, logCtx, tracker, "upload rejected", err)
			if sendErr := f.processor.messenger.SendText(ctx, chat, ReplyUnsupported); sendErr != nil {
				logCtx.Error("Failed to send rejection reply.", "error", sendErr)
			}
			return nil
		}
		return f.handleError(ctx, logCtx, tracker, "failed to download upload", err)
	}

	return f.recognize(ctx, logCtx, tracker, chat, in)
}

// job records the lifecycle of one request.
type job interface {
	SetStatus(ctx context.Context, status, errDetails string) error
	Update(ctx context.Context, updates ...firestore.Update) error
}

type firestoreJob struct {
	ref *firestore.DocumentRef
}

func (j firestoreJob) SetStatus(ctx context.Context, status, errDetails string) error {
	return gcp.UpdateJobStatus(ctx, j.ref, status, errDetails)
}

func (j firestoreJob) Update(ctx context.Context, updates ...firestore.Update) error {
	return gcp.UpdateJob(ctx, j.ref, updates...)
}

// recognize runs the pipeline for a downloaded upload and records the final
// job status. Recognition failures are already answered by the processor, so
// they are not returned.
func (f *OCRFunction) recognize(ctx context.Context, logCtx *slog.Logger, j job, chat models.Chat, in models.RawInput) error {
	if err := j.SetStatus(ctx, models.StatusRecognizing, ""); err != nil {
		return f.handleError(ctx, logCtx, j, "failed to update status to RECOGNIZING", err)
	}

	outcome, err := f.processor.Handle(ctx, chat, in)
	if err != nil {
		f.handleError(ctx, logCtx, j, "recognition failed", err)
		return nil
	}

	updates := []firestore.Update{
		{Path: "status", Value: models.StatusDelivered},
		{Path: "pageCount", Value: outcome.Pages},
		{Path: "pagesDone", Value: outcome.Pages},
	}
	if outcome.Empty {
		updates[0].Value = models.StatusEmpty
	} else {
		updates = append(updates, firestore.Update{Path: "delivery", Value: outcome.Delivery.String()})
	}
	if err := j.Update(ctx, updates...); err != nil {
		logCtx.Error("Failed to record final job status.", "error", err)
	}
	logCtx.Info("Request complete.", "pages", outcome.Pages, "empty", outcome.Empty)
	return nil
}

func (f *OCRFunction) createJob(ctx context.Context, chat models.Chat, in models.RawInput) (*firestore.DocumentRef, error) {
	now := time.Now()
	record := models.Job{
		ChatID:           chat.ID,
		OriginalFilename: in.Filename,
		Kind:             in.Kind.String(),
		Status:           models.StatusReceived,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	docRef, _, err := f.firestoreClient.Collection(f.config.CollectionName).Add(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create job document: %w", err)
	}
	return docRef, nil
}

func (f *OCRFunction) handleError(ctx context.Context, logCtx *slog.Logger, j job, message string, originalErr error) error {
	fullError := fmt.Errorf("%s: %w", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := j.SetStatus(ctx, models.StatusFailed, fullError.Error()); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fullError
}

// ChatIDFromObject extracts the chat from an upload path of the form
// uploads/<chat>/<file>. Other layouts use the parent directory, or
// "unknown" for objects at the bucket root.
func ChatIDFromObject(name string) string {
	parts := strings.Split(strings.Trim(name, "/"), "/")
	switch {
	case len(parts) >= 3 && parts[0] == "uploads":
		return parts[1]
	case len(parts) >= 2:
		return parts[len(parts)-2]
	default:
		return "unknown"
	}
}

// KindForObject classifies an upload. Images are photos; everything else is
// treated as a document and must then be a PDF.
func KindForObject(name, contentType string) models.InputKind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mediaType, "image/") {
		return models.KindPhoto
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return models.KindPhoto
	}
	return models.KindPDFDocument
}
