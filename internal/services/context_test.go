package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davemk99/studyrag/internal/models"
)

func TestBuildContextFormat(t *testing.T) {
	chunks := []models.ScoredChunk{
		scored("c1", 3, "Newton's first law states that objects at rest stay at rest.", 0.92),
		scored("c2", 7, "Force equals mass times acceleration.", 0.85),
	}

	out := BuildContext(chunks)

	assert.True(t, strings.HasPrefix(out, "Relevant context from the PDF:\n"))
	assert.Contains(t, out, `[Source 1, Page 3]:`)
	assert.Contains(t, out, `"Newton's first law states that objects at rest stay at rest."`)
	assert.Contains(t, out, `[Source 2, Page 7]:`)

	// Ranking order is preserved: source 1 appears before source 2.
	require.Less(t, strings.Index(out, "[Source 1"), strings.Index(out, "[Source 2"))
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
	assert.Equal(t, "", BuildContext([]models.ScoredChunk{}))
}
