package ingestion_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFormFeedAssignsPageNumbers(t *testing.T) {
	pages := SplitFormFeed("page one text\fpage two text\fpage three text")

	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Page)
	assert.Equal(t, 2, pages[1].Page)
	assert.Equal(t, 3, pages[2].Page)
	assert.Equal(t, "page one text", pages[0].Text)
}

func TestSplitFormFeedBlankPagesAdvanceNumbering(t *testing.T) {
	// Page 2 is blank: skipped, but page 3 keeps its original position.
	pages := SplitFormFeed("first\f   \fthird")

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Page)
	assert.Equal(t, 3, pages[1].Page)
	assert.Equal(t, "third", pages[1].Text)
}

func TestSplitFormFeedNoSeparator(t *testing.T) {
	pages := SplitFormFeed("single page document")

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Page)
}

func TestSplitFormFeedEmpty(t *testing.T) {
	assert.Empty(t, SplitFormFeed(""))
	assert.Empty(t, SplitFormFeed("\f\f"))
}
