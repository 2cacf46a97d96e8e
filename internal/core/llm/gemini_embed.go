package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
)

// embedTimeout bounds a single embedding call; expiry surfaces as a
// retryable EmbeddingServiceError rather than a 4xx rejection.
const embedTimeout = 30 * time.Second

// GeminiEmbedder embeds text spans at a fixed dimensionality. It never
// retries; the ingestion orchestrator owns retry policy.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	dim       int
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, dim int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimensionality must be positive, got %d", dim)
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, dim: dim}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Dimension returns the configured vector width. The chunk store's column
// width must match; retrieval must embed queries through the same model.
func (g *GeminiEmbedder) Dimension() int { return g.dim }

// EmbedText converts one text span into a vector of exactly the configured
// dimensionality. A width mismatch is a configuration error, not a service
// error: the model and the vector column disagree and no retry can fix it.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	em := g.client.EmbeddingModel(g.modelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, errs.Embedding(err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errs.Embedding(fmt.Errorf("no embedding data in response"))
	}
	if len(res.Embedding.Values) != g.dim {
		return nil, fmt.Errorf("model %q returned %d dimensions, store expects %d: embedding model and vector column are misconfigured",
			g.modelName, len(res.Embedding.Values), g.dim)
	}
	return res.Embedding.Values, nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
