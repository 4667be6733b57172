// Package textbudget bounds raw text to character budgets that approximate LLM token budgets.
package textbudget

import (
	"strings"
	"unicode/utf8"
)

const (
	// CharsPerToken is the character-per-token ratio used for budgeting
	CharsPerToken = 4
	// MaxTokens is the token budget for a combined analysis input
	MaxTokens = 5000
	// MaxChars is the character budget for a combined analysis input
	MaxChars = MaxTokens * CharsPerToken
	// PastedTextMaxChars bounds each pasted text sample
	PastedTextMaxChars = 2000
	// FileSampleChars bounds the representative sample taken from each uploaded file
	FileSampleChars = 3000
	// GeneratedMaxWords bounds generated content shown to the user
	GeneratedMaxWords = 200

	// Marker is appended when a cut falls on a word boundary
	Marker = "..."
	// MiddleMarker separates the head and middle excerpts of a sample
	MiddleMarker = "[...MIDDLE SECTION...]"
	// EndMarker separates the middle and tail excerpts of a sample
	EndMarker = "[...END SECTION...]"

	// sentenceThreshold is the fraction of the budget a sentence cut must reach
	sentenceThreshold = 0.8
)

// EstimateTokens returns a rough token count for text
func EstimateTokens(text string) int {
	return len(text) / CharsPerToken
}

// CharsForTokens converts a token budget into a character budget
func CharsForTokens(tokens int) int {
	return tokens * CharsPerToken
}

// Truncate bounds text to maxChars, preferring a sentence boundary past 80% of the
// budget and otherwise cutting at the last word boundary and appending Marker.
// The result may exceed maxChars by len(Marker).
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(text) <= maxChars {
		return text
	}

	truncated := text[:runeFloor(text, maxChars)]

	if lastSentence := strings.LastIndex(truncated, "."); float64(lastSentence) > float64(maxChars)*sentenceThreshold {
		return truncated[:lastSentence+1]
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace >= 0 {
		return truncated[:lastSpace] + Marker
	}
	return truncated + Marker
}

// Sample reduces text to a head/middle/tail excerpt of roughly maxChars characters.
// The three excerpts are joined with MiddleMarker and EndMarker so discontinuities
// stay visible to the reader.
func Sample(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	if maxChars <= 0 {
		return ""
	}

	share := maxChars / 3

	start := text[:runeFloor(text, share)]

	mid := len(text) / 2
	midStart := runeFloor(text, mid-share/2)
	midEnd := runeFloor(text, midStart+share)
	middle := text[midStart:midEnd]

	end := text[runeCeil(text, len(text)-share):]

	var sb strings.Builder
	sb.Grow(len(start) + len(middle) + len(end) + len(MiddleMarker) + len(EndMarker) + 8)
	sb.WriteString(start)
	sb.WriteString("\n\n")
	sb.WriteString(MiddleMarker)
	sb.WriteString("\n\n")
	sb.WriteString(middle)
	sb.WriteString("\n\n")
	sb.WriteString(EndMarker)
	sb.WriteString("\n\n")
	sb.WriteString(end)
	return sb.String()
}

// SampleOverhead is the number of characters Sample adds around the excerpts
func SampleOverhead() int {
	return len(MiddleMarker) + len(EndMarker) + 8
}

// TrimWords limits text to maxWords whitespace-separated words.
// It returns the trimmed text, the word count of the untrimmed text and whether a cut happened.
func TrimWords(text string, maxWords int) (string, int, bool) {
	content := strings.TrimSpace(text)
	words := strings.Fields(content)
	if maxWords <= 0 || len(words) <= maxWords {
		return content, len(words), false
	}
	return strings.Join(words[:maxWords], " ") + Marker, len(words), true
}

// runeFloor moves i back to the nearest rune start at or before i
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// runeCeil moves i forward to the nearest rune start at or after i
func runeCeil(s string, i int) int {
	if i <= 0 {
		return 0
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
