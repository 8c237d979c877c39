package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	ledongthuc "github.com/ledongthuc/pdf"
)

const defaultMaxTextSize = 1 * 1024 * 1024 // 1MB of extracted text

// Extractor pulls plain text out of a PDF buffer for preview surfaces.
type Extractor struct {
	maxFileSize int64
	maxTextSize int
}

// NewExtractor creates an extractor with the specified constraints.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		maxTextSize: defaultMaxTextSize,
	}
}

// ExtractText extracts the plain text of every page, concatenated with
// page breaks. Pages that fail to decode are skipped rather than failing
// the whole document.
func (e *Extractor) ExtractText(req ExtractTextRequest) (*ExtractTextResult, error) {
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	if int64(len(req.Data)) > e.maxFileSize {
		return nil, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(req.Data), e.maxFileSize)
	}

	reader, err := ledongthuc.NewReader(bytes.NewReader(req.Data), int64(len(req.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	var builder strings.Builder
	total := 0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if total+len(content) > e.maxTextSize {
			builder.WriteString(truncateOnRuneBoundary(content, e.maxTextSize-total))
			break
		}

		builder.WriteString(content)
		total += len(content)

		if pageNum < reader.NumPage() {
			builder.WriteString("\n\n--- Page Break ---\n\n")
		}
	}

	return &ExtractTextResult{
		Name:  req.Name,
		Pages: reader.NumPage(),
		Text:  builder.String(),
	}, nil
}

// truncateOnRuneBoundary cuts s to at most limit bytes without splitting a
// multi-byte rune.
func truncateOnRuneBoundary(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if limit >= len(s) {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
