package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// RedactedPlaceholder replaces sensitive values
const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),         // Groq
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),        // OpenAI
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`),        // Google
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)api_?key\s*[:=]\s*[^\s,;]{8,}`),
}

// sensitiveWords match a whole key segment or its tail, so access_token and
// accessToken redact while estimated_tokens and max_tokens pass through
var sensitiveWords = []string{"authorization", "password", "secret", "token"}

// IsSensitiveField reports whether a field name indicates a secret
func IsSensitiveField(key string) bool {
	lower := strings.ToLower(key)
	segments := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	if strings.Contains(strings.Join(segments, ""), "apikey") {
		return true
	}
	for _, seg := range segments {
		for _, word := range sensitiveWords {
			if strings.HasSuffix(seg, word) {
				return true
			}
		}
	}
	return false
}

// Redact replaces recognizable credentials in value
func Redact(value string) string {
	if value == "" {
		return value
	}
	for _, pattern := range sensitivePatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// redactingCore scrubs messages and string fields before they reach the wrapped core
type redactingCore struct {
	zapcore.Core
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c *redactingCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = Redact(entry.Message)
	return c.Core.Write(entry, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		switch {
		case IsSensitiveField(f.Key):
			out[i] = zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: RedactedPlaceholder}
		case f.Type == zapcore.StringType:
			f.String = Redact(f.String)
			out[i] = f
		default:
			out[i] = f
		}
	}
	return out
}
