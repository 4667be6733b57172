package extract

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

func pdfConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// extractPDF returns the text of every page in page order, each page followed by a newline.
// Malformed content can panic inside the parser; that is reported as an error.
func extractPDF(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	count, err := api.PageCount(bytes.NewReader(content), pdfConfig())
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf structure: %w", err)
	}

	if count == 0 {
		return "", 0, nil
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := r.NumPage()

	var sb strings.Builder
	// Pages are 1-indexed
	for i := 1; i <= numPages; i++ {
		pageText, err := pdfPageText(r.Page(i))
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}

	return sb.String(), numPages, nil
}

// pdfPageText joins the page's text rows with single spaces
func pdfPageText(p pdf.Page) (string, error) {
	if p.V.IsNull() {
		return "", nil
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for _, t := range row.Content {
			line.WriteString(t.S)
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			items = append(items, s)
		}
	}

	return strings.Join(items, " "), nil
}
