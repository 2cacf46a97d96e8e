package ingestion_engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPageBreaksAtSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one closes."
	chunks := SplitPage(text, 1, 50)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, 1, c.Page)
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
		// Multi-sentence input never produces a chunk over the limit.
		assert.LessOrEqual(t, len(c.Text), 50)
	}

	// No sentence may be dropped.
	var parts []string
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	joined := strings.Join(parts, " ")
	assert.Contains(t, joined, "First sentence here.")
	assert.Contains(t, joined, "Second sentence follows.")
	assert.Contains(t, joined, "Third one closes.")
}

func TestSplitPageAccumulatesUpToLimit(t *testing.T) {
	// Two short sentences fit one chunk, the third starts the next.
	text := "One. Two. Three."
	chunks := SplitPage(text, 3, 11)

	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Three.", chunks[1].Text)
}

func TestSplitPageOversizedSentenceBecomesOwnChunk(t *testing.T) {
	long := strings.Repeat("word ", 30) + "end."
	text := "Short. " + long

	chunks := SplitPage(text, 1, 40)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Short.", chunks[0].Text)
	assert.Greater(t, len(chunks[1].Text), 40)
	assert.True(t, strings.HasSuffix(chunks[1].Text, "end."))
}

func TestSplitPageNoTerminatorKeepsWholeText(t *testing.T) {
	chunks := SplitPage("a heading with no punctuation", 2, 500)

	require.Len(t, chunks, 1)
	assert.Equal(t, "a heading with no punctuation", chunks[0].Text)
}

func TestSplitPageTrailingFragmentKept(t *testing.T) {
	chunks := SplitPage("Complete sentence. trailing fragment", 1, 500)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "trailing fragment")
}

func TestSplitPageEmptyInput(t *testing.T) {
	assert.Empty(t, SplitPage("", 1, 500))
	assert.Empty(t, SplitPage("   \n\t  ", 1, 500))
}

func TestChunkPagesGlobalIndexAndPageOrder(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: "One. Two. Three."},
		{Page: 2, Text: "Four."},
		{Page: 4, Text: "Five. Six."},
	}

	chunks := ChunkPages(pages, 6)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index, "indices must be 0..N-1 in order")
	}
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].Page, chunks[i-1].Page,
			"page numbers must be non-decreasing with index")
	}

	// Blank page 3 was never extracted; numbering still reflects the original.
	assert.Equal(t, 4, chunks[len(chunks)-1].Page)
}

func TestChunkPagesEmpty(t *testing.T) {
	assert.Empty(t, ChunkPages(nil, 500))
	assert.Empty(t, ChunkPages([]PageText{{Page: 1, Text: "  "}}, 500))
}
