package ingestion_engine

import (
	"bytes"
	"context"
	"strings"

	"code.sajari.com/docconv"

	"github.com/davemk99/studyrag/internal/core/errs"
)

// PageText is the extracted text of one page.
type PageText struct {
	Page int
	Text string
}

// DocumentExtractor turns raw document bytes into per-page text.
type DocumentExtractor interface {
	ExtractPages(ctx context.Context, data []byte, contentType string) ([]PageText, error)
}

// DocconvExtractor extracts text via docconv. PDF conversion goes through
// pdftotext, which separates pages with form feeds; SplitFormFeed recovers
// the page numbering from those.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

func (e *DocconvExtractor) ExtractPages(ctx context.Context, data []byte, contentType string) ([]PageText, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return nil, &errs.ExtractionError{Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := SplitFormFeed(res.Body)
	if len(pages) == 0 {
		return nil, &errs.ExtractionError{Reason: "no text content found"}
	}
	return pages, nil
}

// SplitFormFeed splits extracted text on form-feed page separators. Page
// numbers are 1-based positions in the original document; blank pages are
// skipped but still advance the numbering.
func SplitFormFeed(text string) []PageText {
	parts := strings.Split(text, "\f")
	var out []PageText
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, PageText{Page: i + 1, Text: part})
	}
	return out
}

var _ DocumentExtractor = (*DocconvExtractor)(nil)
