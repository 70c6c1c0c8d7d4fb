// Package config loads every tunable of the recognition pipeline from the
// environment. Values are passed into constructors; nothing here is global.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/joho/godotenv"
)

// Recognition engines selectable with OCR_ENGINE.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
	EngineVertex    = "vertex"
)

type Config struct {
	Languages []models.Language
	// InlineLengthThreshold is the longest text, in characters, sent as a
	// single message. It is a property of the messaging transport.
	InlineLengthThreshold int
	PDFRasterDPI          int
	ProgressEveryNPages   int
	Workers               int
	PageTimeout           time.Duration
	MaxUploadBytes        int64

	Engine         string
	TesseractPath  string
	PdftoppmPath   string
	AttachmentName string
	// TempDir stages attachments; empty uses the system temp directory.
	TempDir string

	ProjectID      string
	VertexAIRegion string
	VertexModel    string
	ReplyBucket    string
	CollectionName string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Languages:             models.DefaultLanguages(),
		InlineLengthThreshold: 4000,
		PDFRasterDPI:          300,
		ProgressEveryNPages:   5,
		Workers:               runtime.NumCPU(),
		PageTimeout:           2 * time.Minute,
		MaxUploadBytes:        20 << 20,
		Engine:                EngineTesseract,
		TesseractPath:         "tesseract",
		PdftoppmPath:          "pdftoppm",
		AttachmentName:        "recognized_text.txt",
		VertexAIRegion:        "us-central1",
		CollectionName:        "ocr_jobs",
	}
}

// Load reads an optional .env file from the working directory or the
// executable's directory, then the process environment.
func Load() (Config, error) {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return Config{}, fmt.Errorf("failed to load %s: %w", envPath, err)
			}
			break
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a validated Config from lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}
	var err error
	intVar := func(key string, dst *int) {
		if err != nil {
			return
		}
		raw := get(key, "")
		if raw == "" {
			return
		}
		v, perr := strconv.Atoi(raw)
		if perr != nil {
			err = fmt.Errorf("%s: %w", key, perr)
			return
		}
		*dst = v
	}

	if raw := get("OCR_LANGUAGES", ""); raw != "" {
		cfg.Languages = parseLanguages(raw)
	}
	intVar("OCR_INLINE_LIMIT", &cfg.InlineLengthThreshold)
	intVar("OCR_PDF_DPI", &cfg.PDFRasterDPI)
	intVar("OCR_PROGRESS_EVERY", &cfg.ProgressEveryNPages)
	intVar("OCR_WORKERS", &cfg.Workers)
	if err != nil {
		return Config{}, err
	}
	if raw := get("OCR_PAGE_TIMEOUT", ""); raw != "" {
		d, perr := time.ParseDuration(raw)
		if perr != nil {
			return Config{}, fmt.Errorf("OCR_PAGE_TIMEOUT: %w", perr)
		}
		cfg.PageTimeout = d
	}
	if raw := get("OCR_MAX_UPLOAD_BYTES", ""); raw != "" {
		v, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return Config{}, fmt.Errorf("OCR_MAX_UPLOAD_BYTES: %w", perr)
		}
		cfg.MaxUploadBytes = v
	}

	cfg.Engine = strings.ToLower(get("OCR_ENGINE", cfg.Engine))
	cfg.TesseractPath = get("TESSERACT_PATH", cfg.TesseractPath)
	cfg.PdftoppmPath = get("PDFTOPPM_PATH", cfg.PdftoppmPath)
	cfg.AttachmentName = get("OCR_ATTACHMENT_NAME", cfg.AttachmentName)
	cfg.TempDir = get("OCR_TEMP_DIR", cfg.TempDir)

	cfg.ProjectID = get("PROJECT_ID", "")
	cfg.VertexAIRegion = get("VERTEX_AI_REGION", cfg.VertexAIRegion)
	cfg.VertexModel = get("VERTEX_AI_MODEL", "")
	cfg.ReplyBucket = get("REPLY_BUCKET", "")
	cfg.CollectionName = get("FIRESTORE_COLLECTION", cfg.CollectionName)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the pipeline settings.
func (c Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one OCR language must be configured")
	}
	positive := []struct {
		name  string
		value int64
	}{
		{"OCR_INLINE_LIMIT", int64(c.InlineLengthThreshold)},
		{"OCR_PDF_DPI", int64(c.PDFRasterDPI)},
		{"OCR_PROGRESS_EVERY", int64(c.ProgressEveryNPages)},
		{"OCR_WORKERS", int64(c.Workers)},
		{"OCR_MAX_UPLOAD_BYTES", c.MaxUploadBytes},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}
	if c.PageTimeout < 0 {
		return fmt.Errorf("OCR_PAGE_TIMEOUT must not be negative")
	}
	switch c.Engine {
	case EngineTesseract, EngineGosseract:
	case EngineVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the vertex engine")
		}
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q", c.Engine)
	}
	if c.AttachmentName == "" || filepath.Base(c.AttachmentName) != c.AttachmentName {
		return fmt.Errorf("OCR_ATTACHMENT_NAME must be a plain file name, got %q", c.AttachmentName)
	}
	return nil
}

// ValidateCloud checks the settings the Cloud Function needs on top of Validate.
func (c Config) ValidateCloud() error {
	if c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if c.ReplyBucket == "" {
		return fmt.Errorf("REPLY_BUCKET environment variable must be set")
	}
	return nil
}

func parseLanguages(raw string) []models.Language {
	var langs []models.Language
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '+' || r == ' ' }) {
		langs = append(langs, models.Language(strings.ToLower(part)))
	}
	return langs
}
