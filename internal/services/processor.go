package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// User-facing replies. They stay generic; the cause goes to the log only.
const (
	ReplyStarted          = "Recognizing text, please wait..."
	ReplyNothingFound     = "No text could be recognized in this file."
	ReplyUnsupported      = "Sorry, this file could not be read. Please send a photo or a PDF document."
	ReplyNotAPdf          = "Please send the document as a PDF file."
	ReplyProcessingFailed = "Sorry, something went wrong while processing your file. Please try again later."
)

// ProgressReply formats the liveness message sent during long documents.
func ProgressReply(done, total int) string {
	return fmt.Sprintf("Processed %d of %d pages...", done, total)
}

// userReplies maps error classes to replies; the first match wins.
var userReplies = []struct {
	err   error
	reply string
}{
	{models.ErrNotAPdf, ReplyNotAPdf},
	{models.ErrDecode, ReplyUnsupported},
}

// ReplyFor returns the generic reply for a recognition failure.
func ReplyFor(err error) string {
	for _, r := range userReplies {
		if errors.Is(err, r.err) {
			return r.reply
		}
	}
	return ReplyProcessingFailed
}

// IsUserError reports whether err is caused by the upload itself rather than
// by the pipeline, so retrying cannot help.
func IsUserError(err error) bool {
	return errors.Is(err, models.ErrNotAPdf) || errors.Is(err, models.ErrDecode)
}

// Outcome summarizes one handled request.
type Outcome struct {
	Pages    int
	Empty    bool
	Delivery models.DeliveryDecision
}

// Processor runs one request end to end: recognize, then deliver.
type Processor struct {
	recognizer *DocumentRecognizer
	dispatcher *Dispatcher
	messenger  Messenger
}

// NewProcessor builds a processor replying through messenger.
func NewProcessor(recognizer *DocumentRecognizer, dispatcher *Dispatcher, messenger Messenger) *Processor {
	return &Processor{recognizer: recognizer, dispatcher: dispatcher, messenger: messenger}
}

// Handle recognizes in and replies to chat. A recognition failure is answered
// with a generic reply and returned; an empty result is answered and is not
// an error.
func (p *Processor) Handle(ctx context.Context, chat models.Chat, in models.RawInput) (Outcome, error) {
	logCtx := slog.With("chatId", chat.ID, "jobId", chat.JobID, "kind", in.Kind.String(), "filename", in.Filename)
	logCtx.Info("Starting recognition.", "bytes", len(in.Data))

	p.notify(ctx, logCtx, chat, ReplyStarted)
	output, err := p.recognizer.RecognizeDocument(ctx, in, func(done, total int) {
		logCtx.Info("Recognition progress.", "pagesDone", done, "pagesTotal", total)
		p.notify(ctx, logCtx, chat, ProgressReply(done, total))
	})
	if err != nil {
		if IsUserError(err) {
			logCtx.Warn("Input rejected.", "error", err)
		} else {
			logCtx.Error("Recognition failed.", "error", err)
		}
		if sendErr := p.messenger.SendText(ctx, chat, ReplyFor(err)); sendErr != nil {
			logCtx.Error("Failed to send failure reply.", "error", sendErr)
		}
		return Outcome{}, err
	}

	outcome := Outcome{Pages: len(output.Pages)}
	decision, err := p.dispatcher.Deliver(ctx, chat, output, p.messenger)
	switch {
	case errors.Is(err, models.ErrEmptyResult):
		logCtx.Info("Nothing recognized.", "pages", outcome.Pages)
		outcome.Empty = true
		if sendErr := p.messenger.SendText(ctx, chat, ReplyNothingFound); sendErr != nil {
			return outcome, fmt.Errorf("send empty-result reply: %w", sendErr)
		}
		return outcome, nil
	case err != nil:
		logCtx.Error("Delivery failed.", "error", err, "delivery", decision.String())
		return outcome, fmt.Errorf("deliver: %w", err)
	}

	outcome.Delivery = decision
	logCtx.Info("Recognition delivered.", "pages", outcome.Pages, "delivery", decision.String())
	return outcome, nil
}

// notify sends a progress message. Progress is best effort and never fails a request.
func (p *Processor) notify(ctx context.Context, logCtx *slog.Logger, chat models.Chat, text string) {
	if err := p.messenger.NotifyProgress(ctx, chat, text); err != nil {
		logCtx.Warn("Failed to send progress notification.", "error", err)
	}
}
