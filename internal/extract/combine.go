package extract

import (
	"strings"

	"github.com/jonathan/brand-voice/internal/textbudget"
)

// Separator joins individual samples in a combined analysis input
const Separator = "\n\n---\n\n"

// Combine builds the analysis input: each pasted sample truncated to
// textbudget.PastedTextMaxChars, then every successful file text in order,
// joined with Separator and truncated to textbudget.MaxChars.
func Combine(pasted []string, files []ExtractedText) (string, error) {
	parts := make([]string, 0, len(pasted)+len(files))

	for _, text := range pasted {
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, textbudget.Truncate(text, textbudget.PastedTextMaxChars))
	}

	for _, f := range files {
		if f.OK() {
			parts = append(parts, f.Text)
		}
	}

	if len(parts) == 0 {
		return "", ErrNoInput
	}

	return textbudget.Truncate(strings.Join(parts, Separator), textbudget.MaxChars), nil
}

// Failed returns the results that carry an extraction error
func Failed(results []ExtractedText) []ExtractedText {
	var failed []ExtractedText
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}
	return failed
}
