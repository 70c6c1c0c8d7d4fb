// Package ocr wraps text recognition engines behind a single fixed
// configuration and composes them with normalization and cleanup.
package ocr

import (
	"context"
	"image"
	"strings"
	"unicode"

	"github.com/Lllllllleong/documentocr/internal/models"
)

// Whitelist restricts engine output to Latin and Cyrillic letters, digits and
// a small punctuation set. Rare legitimate symbols are rejected along with
// the hallucinated ones.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯабвгдеёжзийклмнопрстуфхцчшщъыьэюя" +
	"0123456789" +
	`.,!?-+()/:;%&"`

// Tesseract engine and page segmentation modes.
const (
	// EngineModeDefault selects the LSTM engine with legacy fallback where trained data allows.
	EngineModeDefault = 3
	// PageSegUniformBlock treats the image as a single uniform block of text.
	PageSegUniformBlock = 6
)

// Settings is the fixed engine configuration applied to every call.
type Settings struct {
	EngineMode  int
	PageSegMode int
	Whitelist   string
}

// DefaultSettings returns the configuration every engine runs with.
func DefaultSettings() Settings {
	return Settings{
		EngineMode:  EngineModeDefault,
		PageSegMode: PageSegUniformBlock,
		Whitelist:   Whitelist,
	}
}

// Engine recognizes text in a normalized page image.
//
// Implementations return an error wrapping models.ErrEngineUnavailable when
// the underlying recognizer cannot be invoked, and must honour ctx.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img *image.Gray, languages []models.Language) (string, error)
}

var tesseractCodes = map[models.Language]string{
	models.LanguageRussian: "rus",
	models.LanguageEnglish: "eng",
}

// TesseractLanguages maps short codes to traineddata names joined with "+".
// Unknown codes pass through unchanged.
func TesseractLanguages(langs []models.Language) string {
	return strings.Join(tesseractLanguageCodes(langs), "+")
}

func tesseractLanguageCodes(langs []models.Language) []string {
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		if c, ok := tesseractCodes[l]; ok {
			codes = append(codes, c)
			continue
		}
		codes = append(codes, string(l))
	}
	return codes
}

// FilterWhitelist drops every rune outside the whitelist, keeping whitespace.
// Engines that cannot enforce the whitelist natively apply it to their output.
func FilterWhitelist(text, whitelist string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(whitelist, r) {
			return r
		}
		return -1
	}, text)
}
