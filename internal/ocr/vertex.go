package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/documentocr/internal/gcp"
	"github.com/Lllllllleong/documentocr/internal/models"
)

// ContentGenerator is the part of *genai.GenerativeModel the engine needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexEngine recognizes pages with a Gemini vision model. The model cannot
// be constrained to the whitelist, so its output is filtered afterwards.
type VertexEngine struct {
	model    ContentGenerator
	settings Settings
}

// NewVertexEngine wraps a generative model, typically gcp.VertexClient.RecognizerModel.
func NewVertexEngine(model ContentGenerator, settings Settings) *VertexEngine {
	return &VertexEngine{model: model, settings: settings}
}

func (e *VertexEngine) Name() string { return "vertex" }

func (e *VertexEngine) Recognize(ctx context.Context, img *image.Gray, languages []models.Language) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode page for vertex: %w", err)
	}

	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = string(l)
	}
	prompt := genai.Text(fmt.Sprintf(gcp.RecognizerUserPrompt, strings.Join(names, ", ")))

	resp, err := e.model.GenerateContent(ctx, genai.ImageData("png", buf.Bytes()), prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: vertex generate content: %v", models.ErrEngineUnavailable, err)
	}
	return FilterWhitelist(extractText(resp), e.settings.Whitelist), nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	contentStr := strings.TrimSpace(b.String())
	contentStr = strings.TrimPrefix(contentStr, "```text")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}
