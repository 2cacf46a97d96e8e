package services

import (
	"context"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/models"
)

// RetrievalService embeds a query and runs similarity search over the
// caller's chunks. The query goes through the same embedding model and
// dimensionality as ingestion; mixing models here silently degrades
// retrieval quality, which is why the embedder is injected once at wiring.
type RetrievalService struct {
	db        core.DbClient
	embedder  core.EmbeddingProvider
	threshold float64
}

func NewRetrievalService(db core.DbClient, embedder core.EmbeddingProvider, threshold float64) *RetrievalService {
	return &RetrievalService{db: db, embedder: embedder, threshold: threshold}
}

// Retrieve returns up to k chunks above the similarity threshold, ranked by
// descending similarity. No chunk clearing the threshold yields an empty
// slice, not an error: that is the fallback-path trigger. Embedding failures
// propagate as-is (*errs.EmbeddingServiceError); store failures wrap as
// *errs.VectorSearchError so callers degrade instead of erroring out.
func (s *RetrievalService) Retrieve(ctx context.Context, userID, query string, documentID *string, k int) ([]models.ScoredChunk, error) {
	vec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks, err := s.db.SearchChunks(ctx, userID, vec, documentID, k, s.threshold)
	if err != nil {
		return nil, &errs.VectorSearchError{Err: err}
	}
	return chunks, nil
}
