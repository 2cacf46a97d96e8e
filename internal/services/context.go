package services

import (
	"fmt"
	"strings"

	"github.com/davemk99/studyrag/internal/models"
)

// BuildContext renders retrieved chunks as a citation-ready prompt block.
// Each chunk becomes a numbered source with its page number and verbatim
// text, in the ranking order the retriever produced. Deterministic, no I/O.
func BuildContext(chunks []models.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant context from the PDF:\n")
	for i, ch := range chunks {
		fmt.Fprintf(&b, "\n[Source %d, Page %d]:\n\"%s\"\n", i+1, ch.PageNumber, ch.Text)
	}
	return b.String()
}
