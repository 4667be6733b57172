// Package extract turns uploaded documents (plain text, DOCX and PDF) into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-voice/internal/textbudget"
)

const (
	// DefaultMaxFileSize is the per-document size limit in bytes
	DefaultMaxFileSize = 20 << 20
	// DefaultConcurrency bounds parallel extraction in ExtractAll
	DefaultConcurrency = 4

	mimeTextPlain   = "text/plain"
	mimePDF         = "application/pdf"
	mimeOctetStream = "application/octet-stream"
	wordprocessing  = "wordprocessingml"
	utf8BOM         = "\ufeff"

	// docxExpansionLimit bounds decompressed DOCX text as a multiple of MaxFileSize
	docxExpansionLimit = 10
)

// ErrEmptyText is recorded when a document decodes cleanly but holds no text
var ErrEmptyText = errors.New("no extractable text")

// Options configures an Extractor
type Options struct {
	MaxFileSize int64
	Concurrency int
	SampleChars int
}

// DefaultOptions returns the limits used for uploads
func DefaultOptions() Options {
	return Options{
		MaxFileSize: DefaultMaxFileSize,
		Concurrency: DefaultConcurrency,
		SampleChars: textbudget.FileSampleChars,
	}
}

// Extractor extracts text from raw documents
type Extractor struct {
	opts   Options
	logger *zap.Logger
}

// New creates an Extractor. Zero option values fall back to DefaultOptions.
func New(opts Options, logger *zap.Logger) *Extractor {
	defaults := DefaultOptions()
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaults.MaxFileSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.Concurrency
	}
	if opts.SampleChars <= 0 {
		opts.SampleChars = defaults.SampleChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{opts: opts, logger: logger}
}

// Extract returns the full text of a single document.
// Dispatch is by declared type first and file extension second, in the order
// plain text, DOCX, PDF. Documents matching none yield *UnsupportedFileTypeError.
func (e *Extractor) Extract(ctx context.Context, doc RawDocument) (string, error) {
	text, _, err := e.extract(ctx, doc)
	return text, err
}

func (e *Extractor) extract(ctx context.Context, doc RawDocument) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if int64(len(doc.Content)) > e.opts.MaxFileSize {
		return "", 0, &ExtractionError{
			Name:  doc.Name,
			Cause: fmt.Errorf("file exceeds %d byte limit", e.opts.MaxFileSize),
		}
	}

	declared := baseMediaType(doc.DeclaredType)
	if declared == mimeOctetStream {
		declared = ""
	}

	kind := classify(declared, strings.ToLower(doc.Name))
	sniffed := ""
	if kind == kindUnknown && declared == "" && len(doc.Content) > 0 {
		// content is sniffed only after every declared-type and extension rule missed
		sniffed = baseMediaType(mimetype.Detect(doc.Content).String())
		kind = classify(sniffed, "")
	}

	switch kind {
	case kindText:
		return decodeText(doc.Content), 0, nil

	case kindDOCX:
		text, err := extractDOCX(doc.Content, e.opts.MaxFileSize*docxExpansionLimit)
		if err != nil {
			return "", 0, &ExtractionError{Name: doc.Name, Cause: err}
		}
		return text, 0, nil

	case kindPDF:
		text, pages, err := extractPDF(doc.Content)
		if err != nil {
			return "", 0, &ExtractionError{Name: doc.Name, Cause: err}
		}
		return text, pages, nil
	}

	reported := doc.DeclaredType
	if reported == "" {
		reported = sniffed
	}
	return "", 0, &UnsupportedFileTypeError{DeclaredType: reported}
}

type docKind int

const (
	kindUnknown docKind = iota
	kindText
	kindDOCX
	kindPDF
)

// classify applies the dispatch rules in order: plain text, DOCX, PDF.
// Each rule matches on media type or on the lower-cased file name extension.
func classify(mediaType, name string) docKind {
	switch {
	case mediaType == mimeTextPlain || strings.HasSuffix(name, ".txt"):
		return kindText
	case strings.Contains(mediaType, wordprocessing) || strings.HasSuffix(name, ".docx"):
		return kindDOCX
	case mediaType == mimePDF || strings.HasSuffix(name, ".pdf"):
		return kindPDF
	}
	return kindUnknown
}

// ExtractAll extracts every document independently and returns one result per
// input in input order. Failures are recorded on the result, never returned.
// Successful text is reduced with textbudget.Sample.
func (e *Extractor) ExtractAll(ctx context.Context, docs []RawDocument) []ExtractedText {
	results := make([]ExtractedText, len(docs))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			results[i] = e.extractOne(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Extractor) extractOne(ctx context.Context, doc RawDocument) ExtractedText {
	size := doc.Size
	if size <= 0 {
		size = int64(len(doc.Content))
	}
	result := ExtractedText{SourceName: doc.Name, Size: size}

	text, pages, err := e.extract(ctx, doc)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyText
	}
	if err != nil {
		e.logger.Warn("document extraction failed",
			zap.String("name", doc.Name),
			zap.String("declared_type", doc.DeclaredType),
			zap.Error(err))
		result.Error = err.Error()
		return result
	}

	sampled := textbudget.Sample(text, e.opts.SampleChars)
	result.Text = sampled
	result.OriginalLength = len(text)
	result.ProcessedLength = len(sampled)
	result.WasTruncated = len(text) > e.opts.SampleChars
	result.PageCount = pages

	e.logger.Debug("document extracted",
		zap.String("name", doc.Name),
		zap.Int("original_length", result.OriginalLength),
		zap.Int("processed_length", result.ProcessedLength),
		zap.Bool("was_truncated", result.WasTruncated))

	return result
}

func baseMediaType(value string) string {
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = value[:i]
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func decodeText(content []byte) string {
	text := strings.TrimPrefix(string(content), utf8BOM)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return text
}
