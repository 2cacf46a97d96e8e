package ingestion_engine

import (
	"regexp"
	"strings"
)

// sentenceRe matches one sentence up to and including its terminal
// punctuation. Text after the last terminator is handled as a remainder so
// no sentence is ever dropped.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// PageChunk is a sentence-aligned span of one page's text.
type PageChunk struct {
	Text string
	Page int
}

// IndexedChunk is a PageChunk with its document-global sequence index.
type IndexedChunk struct {
	Index int
	Page  int
	Text  string
}

// SplitPage splits one page's extracted text into chunks of at most maxChars,
// breaking only at sentence boundaries. A single sentence longer than
// maxChars becomes its own oversized chunk. Empty or whitespace-only chunks
// are never emitted. Pure function, no I/O.
func SplitPage(text string, page, maxChars int) []PageChunk {
	if maxChars <= 0 {
		maxChars = 500
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []PageChunk
	var current string

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			chunks = append(chunks, PageChunk{Text: s, Page: page})
		}
	}

	for _, sentence := range sentences {
		if len(current)+len(sentence) > maxChars && current != "" {
			emit(current)
			current = sentence
		} else {
			current += sentence
		}
	}
	emit(current)

	return chunks
}

// splitSentences breaks text at terminal punctuation. Text with no
// terminator at all comes back as a single sentence, and a trailing
// fragment after the last terminator is kept as its own sentence.
func splitSentences(text string) []string {
	matches := sentenceRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var out []string
	for _, m := range matches {
		out = append(out, text[m[0]:m[1]])
	}
	if tail := text[matches[len(matches)-1][1]:]; strings.TrimSpace(tail) != "" {
		out = append(out, tail)
	}
	return out
}

// ChunkPages runs the chunker over every page in order and assigns the
// document-global sequence index. Indices come out as 0..N-1 and page
// numbers are non-decreasing because pages are processed in page order.
func ChunkPages(pages []PageText, maxChars int) []IndexedChunk {
	var out []IndexedChunk
	idx := 0
	for _, p := range pages {
		for _, c := range SplitPage(p.Text, p.Page, maxChars) {
			out = append(out, IndexedChunk{Index: idx, Page: c.Page, Text: c.Text})
			idx++
		}
	}
	return out
}
