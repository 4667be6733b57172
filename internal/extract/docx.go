package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

var (
	errNoDocumentPart = errors.New("missing " + docxBodyPart)
	errDocxTooLarge   = errors.New(docxBodyPart + " exceeds the decompressed size limit")
)

// extractDOCX reads the main document part of a DOCX archive and returns its raw text.
// Paragraphs are separated by newlines, tabs and breaks are preserved.
// A positive limit caps the decompressed size of the document part.
func extractDOCX(content []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		if limit > 0 && f.UncompressedSize64 > uint64(limit) {
			return "", errDocxTooLarge
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()

		if limit <= 0 {
			return docxText(rc)
		}
		// the header size is not trusted, count what is actually inflated
		lr := &io.LimitedReader{R: rc, N: limit + 1}
		text, err := docxText(lr)
		if lr.N <= 0 {
			return "", errDocxTooLarge
		}
		return text, err
	}

	return "", errNoDocumentPart
}

// docxText walks WordprocessingML tokens in document order
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		sb         strings.Builder
		paragraphs []string
		inText     bool
		inRun      bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// tab stops under pPr are layout, only run-level tabs are content
				if inRun {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					sb.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, sb.String())
				sb.Reset()
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	if sb.Len() > 0 {
		paragraphs = append(paragraphs, sb.String())
	}

	return strings.Join(paragraphs, "\n"), nil
}
