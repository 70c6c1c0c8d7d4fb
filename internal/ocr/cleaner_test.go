package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t\n  ", ""},
		{"trims and drops blank lines", "  Привет  \n\n   мир\n", "Привет\nмир"},
		{"pipe", "|", "I"},
		{"lowercase l", "l", "I"},
		{"zero", "0", "O"},
		{"one", "1", "I"},
		{"zero before one", "10", "IO"},
		{"all rules in order", "l1|0", "IIIO"},
		{"uppercase L untouched", "LOL", "LOL"},
		{"crlf lines", "abc\r\ndef\r\n", "abc\ndef"},
		{"digits are lost", "2014", "2OI4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	in := "  hello | world 10\n\n l0l "
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}
