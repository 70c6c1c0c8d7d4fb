package ocr

import "strings"

// substitutions run in this order on every line. The pass is lossy: a real
// digit 1 or 0 is indistinguishable from a misread I or O and gets replaced.
var substitutions = []struct{ from, to string }{
	{"|", "I"},
	{"l", "I"},
	{"0", "O"},
	{"1", "I"},
}

// Clean trims every line, drops empty ones, applies the misrecognition
// substitutions and rejoins the lines with "\n".
func Clean(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, s := range substitutions {
			line = strings.ReplaceAll(line, s.from, s.to)
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}
