package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode means the input bytes are not a valid image or PDF.
	ErrDecode = errors.New("unsupported input")
	// ErrUnsupportedFormat is returned for a document that does not parse as PDF.
	ErrUnsupportedFormat = fmt.Errorf("%w: not a valid PDF", ErrDecode)
	// ErrNotAPdf is returned when a document is declared without a .pdf extension.
	ErrNotAPdf = errors.New("document is not a PDF")
	// ErrEngineUnavailable means the recognition engine could not run. It is
	// terminal for the current request.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")
	// ErrRecognitionTimeout means one page exceeded its recognition deadline.
	ErrRecognitionTimeout = errors.New("page recognition timed out")
	// ErrEmptyResult is not a failure: nothing was recognized.
	ErrEmptyResult = errors.New("no text recognized")
)
