package extract

// RawDocument is an uploaded file before extraction
type RawDocument struct {
	Name         string
	Size         int64
	DeclaredType string
	Content      []byte
}

// ExtractedText is the outcome of extracting one document.
// Exactly one of Text or Error is meaningful for a given result.
type ExtractedText struct {
	SourceName      string `json:"name"`
	Text            string `json:"text,omitempty"`
	OriginalLength  int    `json:"original_length"`
	ProcessedLength int    `json:"processed_length"`
	Size            int64  `json:"size"`
	WasTruncated    bool   `json:"was_truncated"`
	PageCount       int    `json:"page_count,omitempty"`
	Error           string `json:"error,omitempty"`
}

// OK reports whether extraction produced usable text
func (e ExtractedText) OK() bool {
	return e.Error == "" && e.Text != ""
}
