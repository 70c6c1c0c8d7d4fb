package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Recognition Model Prompts ---
const RecognizerSystemPrompt = "You are an optical character recognition engine. You transcribe the text visible in an image exactly as printed, line by line, without commentary, translation or formatting."

const RecognizerUserPrompt = `Transcribe all text in the provided page image.

Rules:
1. Output only the transcribed text, one printed line per output line.
2. Treat the page as a single uniform block of text; do not reconstruct tables or columns.
3. Do not translate, summarize, correct spelling or add Markdown.
4. Expected languages: %s.
5. If the image contains no text, output nothing.`

const defaultRecognizerModel = "gemini-1.5-pro"

// VertexClient holds the generative model used for page recognition.
type VertexClient struct {
	RecognizerModel *genai.GenerativeModel
	baseClient      *genai.Client
}

// NewVertexClient creates a new client with the recognizer model configured.
// An empty modelName selects the default model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = defaultRecognizerModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	recognizerModel := baseClient.GenerativeModel(modelName)
	recognizerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(RecognizerSystemPrompt)},
	}
	recognizerModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "text/plain",
		Temperature:      genai.Ptr[float32](0.0), // transcription must be deterministic
	}
	recognizerModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		RecognizerModel: recognizerModel,
		baseClient:      baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
