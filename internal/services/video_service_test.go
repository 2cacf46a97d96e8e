package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davemk99/studyrag/internal/models"
)

// fakeSearcher records the query it was given and returns canned results.
type fakeSearcher struct {
	recs      []VideoRecommendation
	err       error
	lastQuery string
	calls     int
}

func (f *fakeSearcher) SearchVideos(_ context.Context, query string, _ int64) ([]VideoRecommendation, error) {
	f.calls++
	f.lastQuery = query
	return f.recs, f.err
}

func TestRecommendSeedsQueryFromTitles(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Title: "classical_mechanics-ch3.pdf"}

	search := &fakeSearcher{recs: []VideoRecommendation{{VideoID: "v1", Title: "Mechanics 101"}}}
	svc := NewVideoService(db, search)

	recs, err := svc.Recommend(context.Background(), "user-1", nil)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "v1", recs[0].VideoID)
	assert.Contains(t, search.lastQuery, "classical mechanics ch3")
	assert.True(t, strings.HasSuffix(search.lastQuery, "tutorial explained"))
}

func TestRecommendFiltersByDocumentIDs(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Title: "physics.pdf"}
	db.docs["doc-2"] = &models.Document{ID: "doc-2", UserID: "user-1", Title: "chemistry.pdf"}

	search := &fakeSearcher{}
	svc := NewVideoService(db, search)

	_, err := svc.Recommend(context.Background(), "user-1", []string{"doc-2"})
	require.NoError(t, err)

	assert.Contains(t, search.lastQuery, "chemistry")
	assert.NotContains(t, search.lastQuery, "physics")
}

func TestRecommendEmptyLibrarySkipsSearch(t *testing.T) {
	search := &fakeSearcher{}
	svc := NewVideoService(newFakeDB(), search)

	recs, err := svc.Recommend(context.Background(), "user-1", nil)
	require.NoError(t, err)

	assert.Empty(t, recs)
	assert.Equal(t, 0, search.calls, "no search for an empty library")
}

func TestRecommendIgnoresOtherUsersDocuments(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "someone-else", Title: "their notes.pdf"}

	search := &fakeSearcher{}
	svc := NewVideoService(db, search)

	recs, err := svc.Recommend(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0, search.calls)
}

func TestRecommendPropagatesSearchFailure(t *testing.T) {
	db := newFakeDB()
	db.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Title: "physics.pdf"}

	search := &fakeSearcher{err: errors.New("quota exceeded")}
	svc := NewVideoService(db, search)

	_, err := svc.Recommend(context.Background(), "user-1", nil)
	require.Error(t, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "classical mechanics ch3", cleanTitle("classical_mechanics-ch3.pdf"))
	assert.Equal(t, "organic chemistry", cleanTitle("organic chemistry.PDF"))
	assert.Equal(t, "plain title", cleanTitle("plain title"))
	assert.Equal(t, "", cleanTitle(".pdf"))
}
