package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/Lllllllleong/documentocr/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	ocrInstance *services.OCRFunction
	once        sync.Once
	initErr     error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("RecognizeUpload", recognizeUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// recognizeUpload is the Cloud Function entry point for finalized uploads.
func recognizeUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		ocrInstance, initErr = services.NewOCRFunction(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside Process.
	return ocrInstance.Process(ctx, gcsEvent)
}
