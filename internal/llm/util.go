package llm

import "strings"

const codeFence = "```"

// StripCodeFence returns the body of the first markdown code block in text,
// dropping an info string such as "json" on the opening line. Prose before the
// block is ignored. Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, codeFence)
	if start < 0 {
		return text
	}
	body := text[start+len(codeFence):]

	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		info := strings.TrimSpace(body[:nl])
		if info == "" || isInfoString(info) {
			body = body[nl+1:]
		}
	}

	if end := strings.Index(body, codeFence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// isInfoString reports whether s looks like a fence language tag rather than content
func isInfoString(s string) bool {
	return len(s) < 20 && !strings.ContainsAny(s, " {[\"")
}
