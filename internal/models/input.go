package models

import (
	"path/filepath"
	"strings"
)

// InputKind is the declared kind of an upload.
type InputKind int

const (
	KindPhoto InputKind = iota
	KindPDFDocument
)

func (k InputKind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindPDFDocument:
		return "pdf"
	default:
		return "unknown"
	}
}

// ParseInputKind maps a user-supplied name ("photo", "pdf", "document") to a kind.
func ParseInputKind(s string) (InputKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photo", "image":
		return KindPhoto, true
	case "pdf", "document", "doc":
		return KindPDFDocument, true
	}
	return 0, false
}

// RawInput is an already-downloaded upload. It must not be mutated once received.
type RawInput struct {
	Data     []byte
	Kind     InputKind
	Filename string
}

// HasPDFExtension reports whether the declared filename ends in .pdf.
func (in RawInput) HasPDFExtension() bool {
	return strings.EqualFold(filepath.Ext(in.Filename), ".pdf")
}

// Chat identifies the conversation a reply is addressed to.
type Chat struct {
	ID string
	// JobID links replies and progress to a persisted job, when there is one.
	JobID string
}

// Language is a short language code such as "ru" or "en".
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
)

// DefaultLanguages is the language set used when none is configured.
func DefaultLanguages() []Language {
	return []Language{LanguageRussian, LanguageEnglish}
}
