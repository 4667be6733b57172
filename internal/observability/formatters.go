// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// excerptChars bounds text excerpts inside a box
	excerptChars = 200
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content.
// Lines wider than the box are wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, wrapped)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintToneProfile outputs a human-readable summary of a tone profile.
func (p *Printer) PrintToneProfile(title string, profile *types.ToneProfile) {
	if profile == nil {
		return
	}
	if title == "" {
		title = "TONE PROFILE"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Formality:       %s\n", profile.Formality))
	sb.WriteString(fmt.Sprintf("Tone:            %s\n", profile.Tone))
	sb.WriteString(fmt.Sprintf("Sentence length: %s\n", profile.SentenceLength))

	if len(profile.VocabularyPatterns) > 0 {
		sb.WriteString("\nVocabulary:\n")
		for _, pattern := range profile.VocabularyPatterns {
			sb.WriteString(fmt.Sprintf("  • %s\n", pattern))
		}
	}

	if len(profile.ToneKeywords) > 0 {
		sb.WriteString(fmt.Sprintf("\nKeywords: %s\n", strings.Join(profile.ToneKeywords, ", ")))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtraction outputs per-file extraction results, flagging failures.
func (p *Printer) PrintExtraction(results []extract.ExtractedText) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for i, r := range results {
		if r.OK() {
			sb.WriteString(fmt.Sprintf("✓ %s\n", r.SourceName))
			sb.WriteString(fmt.Sprintf("  %d → %d chars", r.OriginalLength, r.ProcessedLength))
			if r.PageCount > 0 {
				sb.WriteString(fmt.Sprintf(", %d pages", r.PageCount))
			}
			if r.WasTruncated {
				sb.WriteString(" (sampled)")
			}
			sb.WriteString("\n")
		} else {
			failed++
			sb.WriteString(fmt.Sprintf("⚠ %s\n", r.SourceName))
			sb.WriteString(fmt.Sprintf("  %s\n", r.Error))
		}
		if i < len(results)-1 && i < maxItemsToShow*2-1 {
			sb.WriteString("\n")
		}
		if i == maxItemsToShow*2-1 && len(results) > maxItemsToShow*2 {
			sb.WriteString(fmt.Sprintf("\n... and %d more files", len(results)-maxItemsToShow*2))
			break
		}
	}

	title := fmt.Sprintf("EXTRACTED %d FILES", len(results))
	if failed > 0 {
		title = fmt.Sprintf("EXTRACTED %d FILES (%d FAILED)", len(results), failed)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGenerated outputs generated content with its word count.
func (p *Printer) PrintGenerated(topic string, content *types.GeneratedContent) {
	if content == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic: %s\n", topic))
	sb.WriteString(fmt.Sprintf("Words: %d", content.WordCount))
	if content.Trimmed {
		sb.WriteString(" (trimmed)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(content.Text)

	p.printBox("GENERATED CONTENT", sb.String())
}

// PrintSavedProfiles outputs the store listing with indices.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSavedProfiles(profiles []types.SavedProfile) {
	if len(profiles) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "No saved profiles")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, saved := range profiles {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, saved.Name))
		sb.WriteString(fmt.Sprintf("    %s, %s\n", saved.Profile.Formality, excerpt(saved.Profile.Tone, 40)))
	}

	p.printBox(fmt.Sprintf("SAVED PROFILES (%d)", len(profiles)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRawResponse outputs an excerpt of an unparseable model response.
func (p *Printer) PrintRawResponse(raw string) {
	if raw == "" {
		return
	}
	p.printBox("RAW MODEL RESPONSE", excerpt(raw, excerptChars))
}

func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// wrap splits line into chunks of at most width runes, breaking on spaces when possible
func wrap(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}

	var out []string
	for len(runes) > width {
		cut := width
		for i := width; i > width/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
