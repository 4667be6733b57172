// Package prompts holds the prompt templates for tone analysis and content generation.
// Templates live in voice.json, embedded at compile time, and use {{.Name}} placeholders.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Template keys in voice.json
const (
	AnalyzeToneProfile = "analyze-tone-profile"
	ToneProfileExample = "tone-profile-example"
	GenerateContent    = "generate-content"
)

//go:embed voice.json
var voiceJSON []byte

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// Set is a parsed collection of named templates
type Set struct {
	templates map[string]string
}

// MissingValueError is returned by Render when a placeholder has no value
type MissingValueError struct {
	Key     string
	Missing []string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("prompt %q: no value for %v", e.Key, e.Missing)
}

var (
	voiceOnce sync.Once
	voiceSet  *Set
	voiceErr  error
)

// Voice returns the embedded voice templates, parsed on first use
func Voice() (*Set, error) {
	voiceOnce.Do(func() {
		voiceSet, voiceErr = Parse(voiceJSON)
	})
	return voiceSet, voiceErr
}

// Parse builds a Set from a JSON object of key to template
func Parse(data []byte) (*Set, error) {
	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	if templates == nil {
		return nil, fmt.Errorf("prompt templates must be a JSON object")
	}
	return &Set{templates: templates}, nil
}

// Get returns the template stored under key
func (s *Set) Get(key string) (string, error) {
	template, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return template, nil
}

// Keys returns all template keys, sorted
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Render formats the template under key and fails when any of its
// placeholders has no entry in data
func (s *Set) Render(key string, data map[string]string) (string, error) {
	template, err := s.Get(key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingValueError{Key: key, Missing: missing}
	}
	return Format(template, data), nil
}

// MustRender is Render for the embedded templates, panicking on error.
// Use it only with keys and data fixed at compile time.
func MustRender(key string, data map[string]string) string {
	set, err := Voice()
	if err != nil {
		panic(err)
	}
	out, err := set.Render(key, data)
	if err != nil {
		panic(fmt.Sprintf("failed to render prompt: %v", err))
	}
	return out
}

// MustGet returns an embedded template, panicking if it is absent
func MustGet(key string) string {
	set, err := Voice()
	if err != nil {
		panic(err)
	}
	template, err := set.Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format replaces {{.Name}} placeholders with values from data in a single pass.
// Placeholders without a value, and placeholder text inside values, are left as is.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := data[name]; ok {
			return value
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names in template, in order of first use
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
