package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/errs"
	"github.com/davemk99/studyrag/internal/models"
)

// Sources a generated answer can be grounded on.
const (
	SourceRetrieved = "retrieved"
	SourceFallback  = "fallback"
)

const chatCitationPrompt = `You are an AI tutor helping students study from their uploaded PDFs.

%s
CRITICAL CITATION RULES:
1. ALWAYS cite your sources when using information from the provided context
2. Use this EXACT format for citations: "According to p. X: '[2-3 line quote from source]'"
3. The page number X must match the page number from the context provided
4. The quote must be EXACTLY as written in the source text (2-3 lines maximum)
5. If multiple sources support your answer, cite each one separately

%s

Provide clear, accurate answers based ONLY on the context provided above. Always include proper citations.`

const chatFallbackPrompt = `You are an AI tutor helping students study from their uploaded PDFs.

%s
No relevant passages from the document are available for this question. Tell
the student you do not have enough material from the PDF to answer reliably,
and ask them to rephrase or point to a section. Do NOT invent content or
page citations.`

// ChatService answers a question grounded on retrieved chunks, streaming the
// model's output back through a caller-supplied callback.
type ChatService struct {
	db            core.DbClient
	retrieval     *RetrievalService
	llm           core.LLMProvider
	topK          int
	historyWindow int
}

func NewChatService(db core.DbClient, retrieval *RetrievalService, llm core.LLMProvider, topK, historyWindow int) *ChatService {
	return &ChatService{db: db, retrieval: retrieval, llm: llm, topK: topK, historyWindow: historyWindow}
}

// ChatAnswer is the completed result of one streamed turn.
type ChatAnswer struct {
	Text   string
	Source string // "retrieved" or "fallback"
}

// Answer runs one conversation turn. The user message is persisted up front;
// the assistant message only after the stream completes, so a cancelled
// stream commits no partial state. Vector-search failures and empty
// retrievals degrade to the fallback prompt instead of failing the turn.
func (s *ChatService) Answer(ctx context.Context, userID, conversationID, query string, documentID *string, onDelta func(string) error) (*ChatAnswer, error) {
	history, err := s.db.GetRecentMessages(ctx, userID, conversationID, s.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userMsg := &models.ChatMessage{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Role:           "user",
		Content:        query,
	}
	if err := s.db.CreateChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	source := SourceRetrieved
	chunks, err := s.retrieval.Retrieve(ctx, userID, query, documentID, s.topK)
	if err != nil {
		var vse *errs.VectorSearchError
		if !errors.As(err, &vse) {
			return nil, err
		}
		log.Printf("chat: vector search failed, degrading to fallback: %v", err)
		chunks = nil
	}
	if len(chunks) == 0 {
		source = SourceFallback
	}

	titleLine := ""
	if documentID != nil {
		if doc, err := s.db.GetDocumentByID(ctx, *documentID); err == nil && doc != nil {
			titleLine = fmt.Sprintf("You are answering questions about the PDF: %q.\n", doc.Title)
		}
	}

	var system string
	if source == SourceFallback {
		system = fmt.Sprintf(chatFallbackPrompt, titleLine)
	} else {
		system = fmt.Sprintf(chatCitationPrompt, titleLine, BuildContext(chunks))
	}

	full, err := s.llm.GenerateStream(ctx, system, toChatTurns(history), query, onDelta)
	if err != nil {
		return nil, err
	}

	assistantMsg := &models.ChatMessage{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Role:           "assistant",
		Content:        full,
	}
	if err := s.db.CreateChatMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	return &ChatAnswer{Text: full, Source: source}, nil
}

// Messages returns a conversation's turns oldest-first.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error) {
	return s.db.GetRecentMessages(ctx, userID, conversationID, limit)
}

func toChatTurns(history []models.ChatMessage) []core.ChatTurn {
	out := make([]core.ChatTurn, 0, len(history))
	for _, m := range history {
		out = append(out, core.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return out
}
