package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// TesseractEngine runs the tesseract binary once per page, feeding a PNG on
// stdin and reading text from stdout.
type TesseractEngine struct {
	path     string
	settings Settings
}

// NewTesseractEngine returns an engine using the binary at path ("tesseract"
// resolves through PATH).
func NewTesseractEngine(path string, settings Settings) *TesseractEngine {
	if path == "" {
		path = "tesseract"
	}
	return &TesseractEngine{path: path, settings: settings}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Args returns the command line used for the given languages, without the binary.
func (e *TesseractEngine) Args(languages []models.Language) []string {
	args := []string{"stdin", "stdout"}
	if l := TesseractLanguages(languages); l != "" {
		args = append(args, "-l", l)
	}
	args = append(args,
		"--oem", strconv.Itoa(e.settings.EngineMode),
		"--psm", strconv.Itoa(e.settings.PageSegMode),
	)
	if e.settings.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+e.settings.Whitelist)
	}
	return args
}

func (e *TesseractEngine) Recognize(ctx context.Context, img *image.Gray, languages []models.Language) (string, error) {
	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return "", fmt.Errorf("encode page for tesseract: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.path, e.Args(languages)...)
	cmd.Stdin = &input
	// Pages may already be recognized in parallel; keep tesseract single-threaded.
	cmd.Env = append(os.Environ(), "OMP_THREAD_LIMIT=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: tesseract exited with %d: %s",
				models.ErrEngineUnavailable, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: launch %s: %v", models.ErrEngineUnavailable, e.path, err)
	}
	return stdout.String(), nil
}
