// Package messenger holds the transports replies are delivered through.
package messenger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// Console prints text replies to out, progress to progress, and saves
// attachments under dir.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	progress io.Writer
	dir      string
}

// NewConsole returns a console messenger. An empty dir saves attachments in
// the working directory.
func NewConsole(out, progress io.Writer, dir string) *Console {
	if dir == "" {
		dir = "."
	}
	return &Console{out: out, progress: progress, dir: dir}
}

func (c *Console) SendText(ctx context.Context, chat models.Chat, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, text)
	return err
}

func (c *Console) SendDocument(ctx context.Context, chat models.Chat, content io.Reader, filename string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(c.dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintf(c.progress, "Text saved to %s\n", path)
	return err
}

func (c *Console) NotifyProgress(ctx context.Context, chat models.Chat, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.progress, text)
	return err
}
