package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// Dispatcher sends recognized text inline or, when it exceeds the transport's
// message limit, as a text file attachment.
type Dispatcher struct {
	inlineLimit    int
	attachmentName string
	tempDir        string
}

// NewDispatcher returns a dispatcher that sends text longer than inlineLimit
// characters as attachmentName, staged under tempDir (the system default when
// empty).
func NewDispatcher(inlineLimit int, attachmentName, tempDir string) *Dispatcher {
	if attachmentName == "" {
		attachmentName = "recognized_text.txt"
	}
	return &Dispatcher{inlineLimit: inlineLimit, attachmentName: attachmentName, tempDir: tempDir}
}

// Deliver hands output to sink. Whitespace-only output is not sent; Deliver
// returns models.ErrEmptyResult instead, which callers treat as a valid
// negative answer rather than a failure.
func (d *Dispatcher) Deliver(ctx context.Context, chat models.Chat, output models.AggregateOutput, sink Messenger) (models.DeliveryDecision, error) {
	text := output.Text()
	if strings.TrimSpace(text) == "" {
		return models.DeliveryInline, models.ErrEmptyResult
	}

	decision := models.DecideDelivery(text, d.inlineLimit)
	if decision == models.DeliveryInline {
		if err := sink.SendText(ctx, chat, text); err != nil {
			return decision, fmt.Errorf("send text: %w", err)
		}
		return decision, nil
	}
	if err := d.sendAttachment(ctx, chat, text, sink); err != nil {
		return decision, err
	}
	return decision, nil
}

// sendAttachment stages text in a temp file that is removed on every path.
func (d *Dispatcher) sendAttachment(ctx context.Context, chat models.Chat, text string, sink Messenger) error {
	f, err := os.CreateTemp(d.tempDir, "ocr-result-*.txt")
	if err != nil {
		return fmt.Errorf("create attachment file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if _, err := io.WriteString(f, text); err != nil {
		return fmt.Errorf("write attachment file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind attachment file: %w", err)
	}
	if err := sink.SendDocument(ctx, chat, f, d.attachmentName); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}
