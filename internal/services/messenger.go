package services

import (
	"context"
	"io"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// Messenger delivers replies to the user. The pipeline never talks to the
// network itself; every transport sits behind this interface.
type Messenger interface {
	SendText(ctx context.Context, chat models.Chat, text string) error
	SendDocument(ctx context.Context, chat models.Chat, content io.Reader, filename string) error
	NotifyProgress(ctx context.Context, chat models.Chat, text string) error
}
