package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
)

const generateTimeout = 2 * time.Minute

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", errs.Generation(err)
	}
	return collectText(resp), nil
}

// GenerateStream runs a grounded chat turn in streaming mode. onDelta is
// called for every text fragment; the concatenated text is returned once the
// stream finishes. The stream is not restartable: an onDelta error or a mid-
// stream failure aborts the turn and nothing should be persisted for it.
func (g *GeminiLLM) GenerateStream(ctx context.Context, systemPrompt string, history []core.ChatTurn, query string, onDelta func(string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	cs := m.StartChat()
	cs.History = toGenaiHistory(history)

	var full strings.Builder
	it := cs.SendMessageStream(ctx, genai.Text(query))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", errs.Generation(err)
		}
		delta := collectText(resp)
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return "", fmt.Errorf("stream consumer: %w", err)
		}
		full.WriteString(delta)
	}
	return full.String(), nil
}

// GenerateQuiz asks the model for a JSON response and hands the raw payload
// back. Validation of the shape happens at the caller's boundary.
func (g *GeminiLLM) GenerateQuiz(ctx context.Context, systemPrompt, userPrompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	m := g.client.GenerativeModel(g.modelName)
	m.ResponseMIMEType = "application/json"
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, errs.Generation(err)
	}
	text := collectText(resp)
	if text == "" {
		return nil, errs.Generation(fmt.Errorf("empty response from model"))
	}
	return []byte(text), nil
}

// toGenaiHistory maps stored roles onto the wire roles the API expects
// ("assistant" is "model" there).
func toGenaiHistory(history []core.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" || t.Role == "model" {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return out
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
